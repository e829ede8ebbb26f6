package line_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaiunlab/kaiun/internal/line"
)

func TestVerifySignature_RoundTrip(t *testing.T) {
	t.Parallel()

	bodies := [][]byte{
		[]byte(`{"events":[]}`),
		[]byte(`{"events":[{"type":"message"}]}`),
		[]byte(""),
		[]byte("金運を上げたい"),
	}
	for _, body := range bodies {
		sig := line.Sign(body, "channel-secret")
		require.True(t, line.VerifySignature(body, sig, "channel-secret"),
			"body %q must verify against its own signature", body)
	}
}

func TestVerifySignature_BodyMutationFlips(t *testing.T) {
	t.Parallel()

	body := []byte(`{"events":[{"type":"message","message":{"type":"text","text":"hi"}}]}`)
	sig := line.Sign(body, "channel-secret")

	mutated := append([]byte(nil), body...)
	mutated[0] ^= 0x01
	require.False(t, line.VerifySignature(mutated, sig, "channel-secret"))
}

func TestVerifySignature_SignatureMutationFlips(t *testing.T) {
	t.Parallel()

	body := []byte(`{"events":[]}`)
	raw, err := base64.StdEncoding.DecodeString(line.Sign(body, "channel-secret"))
	require.NoError(t, err)
	raw[0] ^= 0x01
	bad := base64.StdEncoding.EncodeToString(raw)

	require.False(t, line.VerifySignature(body, bad, "channel-secret"))
}

func TestVerifySignature_WrongSecret(t *testing.T) {
	t.Parallel()

	body := []byte(`{"events":[]}`)
	sig := line.Sign(body, "channel-secret")
	require.False(t, line.VerifySignature(body, sig, "other-secret"))
}

func TestVerifySignature_EmptyOrGarbage(t *testing.T) {
	t.Parallel()

	body := []byte(`{"events":[]}`)
	require.False(t, line.VerifySignature(body, "", "channel-secret"))
	require.False(t, line.VerifySignature(body, "not base64 !!!", "channel-secret"))
}

func TestSign_MatchesStdlibHMAC(t *testing.T) {
	t.Parallel()

	body := []byte("raw body bytes, exactly as received")
	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write(body)
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	require.Equal(t, want, line.Sign(body, "s3cret"))
}
