package tracker_test

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/teamsense-lab/argus/pkg/service/tracker"
)

func TestGeneratePKCE(t *testing.T) {
	verifier, challenge, err := tracker.GeneratePKCE()
	gt.NoError(t, err)

	// 32 random bytes in unpadded base64url is always 43 characters
	gt.Number(t, len(verifier)).Equal(43)
	gt.Bool(t, strings.ContainsAny(verifier, "=+/")).False()
	gt.Bool(t, strings.ContainsAny(challenge, "=+/")).False()
	gt.Value(t, challenge).NotEqual(verifier)

	sum := sha256.Sum256([]byte(verifier))
	gt.Value(t, challenge).Equal(base64.RawURLEncoding.EncodeToString(sum[:]))
}

func TestGeneratePKCEUnique(t *testing.T) {
	v1, _, err := tracker.GeneratePKCE()
	gt.NoError(t, err)
	v2, _, err := tracker.GeneratePKCE()
	gt.NoError(t, err)

	gt.Value(t, v1).NotEqual(v2)
}

func TestChallengeDeterministic(t *testing.T) {
	gt.Value(t, tracker.Challenge("fixed-verifier")).Equal(tracker.Challenge("fixed-verifier"))
}
