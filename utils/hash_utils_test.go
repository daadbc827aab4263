package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnosisInputHashNormalization(t *testing.T) {
	base := DiagnosisInputHash("rice", "tillering", 19.076, 72.8777, "yellow leaves", []string{"spots", "wilting"})

	// Case and whitespace are normalized away
	same := DiagnosisInputHash("  RICE ", "Tillering", 19.076, 72.8777, "  Yellow Leaves ", []string{"Wilting", "SPOTS"})
	assert.Equal(t, base, same)

	// Coordinates within ~100m share a hash
	nearby := DiagnosisInputHash("rice", "tillering", 19.0761, 72.8777, "yellow leaves", []string{"spots", "wilting"})
	assert.Equal(t, base, nearby)

	// Different descriptions do not
	other := DiagnosisInputHash("rice", "tillering", 19.076, 72.8777, "brown spots", []string{"spots", "wilting"})
	assert.NotEqual(t, base, other)

	// Far coordinates do not
	far := DiagnosisInputHash("rice", "tillering", 21.0, 72.8777, "yellow leaves", []string{"spots", "wilting"})
	assert.NotEqual(t, base, far)
}

func TestDiagnosisInputHashInputOrderIndependent(t *testing.T) {
	a := DiagnosisInputHash("rice", "tillering", 19, 72, "", []string{"a", "b", "c"})
	b := DiagnosisInputHash("rice", "tillering", 19, 72, "", []string{"c", "a", "b"})
	assert.Equal(t, a, b)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("field-station-42")
	assert.NoError(t, err)
	assert.True(t, CheckPasswordHash("field-station-42", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
