package cache

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint hashes parts with BLAKE2b-256. Parts are length-prefixed so
// ("ab","c") and ("a","bc") differ.
func Fingerprint(parts ...string) string {
	h, _ := blake2b.New256(nil)
	var n [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		_, _ = h.Write(n[:])
		_, _ = h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func ScrapeKey(pageURL string, headless bool) string {
	mode := "static"
	if headless {
		mode = "headless"
	}
	return "scrape:" + mode + ":" + Fingerprint(strings.TrimSpace(pageURL))
}

func ScoreKey(fingerprint string) string {
	return "score:" + fingerprint
}

func SubmissionLockKey(userID, jobLink string) string {
	return "submit:lock:" + Fingerprint(strings.TrimSpace(userID), strings.TrimSpace(jobLink))
}
