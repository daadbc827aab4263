package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleImage = "/9j/4AAQSkZJRgABAQAAAQ=="

func TestAnalyzePlantPhotoNormalizesConfidence(t *testing.T) {
	// Models sometimes answer on the 0-100 scale despite the prompt
	ai := &fakeAI{
		response: `{"detectedIssues":["leaf blight"],"symptoms":["brown lesions"],"healthScore":55,"confidence":82,"imageQuality":"good","visualObservations":"Lesions on older leaves"}`,
		provider: "gemini-2.0-flash",
	}
	svc := NewVisionService(ai)

	signals, err := svc.AnalyzePlantPhoto(context.Background(), sampleImage)
	require.NoError(t, err)
	require.NotNil(t, signals)
	assert.InDelta(t, 0.82, signals.Confidence, 0.001)
	assert.Equal(t, 55, signals.HealthScore)
	assert.Equal(t, []string{"leaf blight"}, signals.DetectedIssues)
}

func TestAnalyzePlantPhotoFractionalConfidenceKept(t *testing.T) {
	ai := &fakeAI{
		response: `{"detectedIssues":[],"symptoms":[],"healthScore":90,"confidence":0.9,"imageQuality":"good","visualObservations":"Healthy canopy"}`,
		provider: "gemini-2.0-flash",
	}
	svc := NewVisionService(ai)

	signals, err := svc.AnalyzePlantPhoto(context.Background(), sampleImage)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, signals.Confidence, 0.001)
}

func TestAnalyzePlantPhotoEmptyImage(t *testing.T) {
	svc := NewVisionService(&fakeAI{})
	signals, err := svc.AnalyzePlantPhoto(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, signals)
}

func TestAnalyzePlantPhotoProviderFailureFallback(t *testing.T) {
	svc := NewVisionService(&fakeAI{err: errors.New("model unavailable")})

	signals, err := svc.AnalyzePlantPhoto(context.Background(), sampleImage)
	require.NoError(t, err, "analysis failure degrades, it does not error")
	require.NotNil(t, signals)
	assert.Zero(t, signals.Confidence)
	assert.Equal(t, 50, signals.HealthScore)
	assert.Equal(t, "Failed to analyze image", signals.VisualObservations)
}

func TestAnalyzePlantPhotoGarbageResponseFallback(t *testing.T) {
	svc := NewVisionService(&fakeAI{response: "not json at all", provider: "gemini"})

	signals, err := svc.AnalyzePlantPhoto(context.Background(), sampleImage)
	require.NoError(t, err)
	assert.Zero(t, signals.Confidence)
}
