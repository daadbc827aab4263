package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password with bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a password against its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// DiagnosisInputHash builds the deterministic memoization key for an AI
// diagnosis request. Coordinates are rounded to 3 decimal places (~100m) so
// nearby queries share a cache entry, and free text is lower-cased and
// trimmed. Exactness is sacrificed on purpose to raise the cache hit rate.
func DiagnosisInputHash(cropType, growthStage string, lat, lon float64, description string, visualIssues []string) string {
	issues := append([]string(nil), visualIssues...)
	for i, issue := range issues {
		issues[i] = strings.ToLower(strings.TrimSpace(issue))
	}
	sort.Strings(issues)

	payload := strings.Join([]string{
		strings.ToLower(strings.TrimSpace(cropType)),
		strings.ToLower(strings.TrimSpace(growthStage)),
		fmt.Sprintf("%.3f", lat),
		fmt.Sprintf("%.3f", lon),
		strings.ToLower(strings.TrimSpace(description)),
		strings.Join(issues, ","),
	}, "|")

	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
