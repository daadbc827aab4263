package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrisense-http-service/services"
)

func bindAdviceRequest(t *testing.T, body string) ExpertAdviceRequest {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/precision-ag/expert-advice", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req ExpertAdviceRequest
	require.NoError(t, c.ShouldBindJSON(&req))
	return req
}

func TestExpertAdviceRequestAcceptsPhotoBase64(t *testing.T) {
	req := bindAdviceRequest(t, `{"cropType":"rice","photoBase64":"data:image/jpeg;base64,AAAA"}`)
	assert.Equal(t, "data:image/jpeg;base64,AAAA", req.photo())
}

func TestExpertAdviceRequestImageAlias(t *testing.T) {
	req := bindAdviceRequest(t, `{"cropType":"rice","image":"data:image/jpeg;base64,BBBB"}`)
	assert.Equal(t, "data:image/jpeg;base64,BBBB", req.photo())
}

func TestExpertAdviceRequestPhotoBase64Wins(t *testing.T) {
	req := bindAdviceRequest(t, `{"cropType":"rice","photoBase64":"AAAA","image":"BBBB"}`)
	assert.Equal(t, "AAAA", req.photo())
}

func TestZoneHealthEnvelopeFallbackIsUnsuccessful(t *testing.T) {
	ok := zoneHealthEnvelope(&services.ZoneHealth{ZoneID: "z1", OverallScore: 84})
	assert.Equal(t, true, ok["success"])

	degraded := zoneHealthEnvelope(&services.ZoneHealth{ZoneID: "z1", OverallScore: 50, IsFallback: true})
	assert.Equal(t, false, degraded["success"])
}
