package http

import (
	"errors"
	"io"
	"log"
	"net/http"

	"provamark/internal/domain"
	"provamark/internal/usecase"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type decodeResponse struct {
	C2PAManifest any `json:"c2pa_manifest"`
	Watermark    any `json:"watermark"`
}

type watermarkError struct {
	Error string `json:"error"`
}

func (s *Server) handleEncode(c *gin.Context) {
	if s.encodeUC == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	if !s.enforceRateLimit(c, "encode") {
		return
	}
	filename, image, ok := readImageUpload(c)
	if !ok {
		return
	}

	req := usecase.EncodeAssetRequest{
		Filename: filename,
		Image:    image,
		Attributes: usecase.ManifestAttributes{
			SoftwareAgent:     c.PostForm("softwareAgent"),
			Title:             c.PostForm("title"),
			Author:            c.PostForm("author"),
			Description:       c.PostForm("description"),
			CreativeWorkURL:   c.PostForm("creativeWorkURL"),
			TrainingPolicy:    c.PostForm("trainingPolicy"),
			ConstraintInfo:    c.PostForm("constraintInfo"),
			DigitalSourceType: c.PostForm("digitalSourceType"),
		},
	}
	resp, err := s.encodeUC.Execute(c.Request.Context(), req)
	if err != nil {
		log.Printf("encode: %v", err)
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", resp.SignedImage)
}

func (s *Server) handleDecode(c *gin.Context) {
	if s.decodeUC == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	if !s.enforceRateLimit(c, "decode") {
		return
	}
	filename, image, ok := readImageUpload(c)
	if !ok {
		return
	}

	resp, err := s.decodeUC.Execute(c.Request.Context(), usecase.DecodeAssetRequest{
		Filename: filename,
		Image:    image,
	})
	if err != nil {
		log.Printf("decode: %v", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildDecodeResponse(resp))
}

func readImageUpload(c *gin.Context) (string, []byte, bool) {
	header, err := c.FormFile("image")
	if err != nil {
		writeError(c, domain.ErrNoImage)
		return "", nil, false
	}
	if header.Filename == "" {
		writeErrorCode(c, http.StatusBadRequest, "NO_IMAGE", "no selected file")
		return "", nil, false
	}
	file, err := header.Open()
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_UPLOAD", "could not read upload")
		return "", nil, false
	}
	defer file.Close()
	image, err := io.ReadAll(file)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_UPLOAD", "could not read upload")
		return "", nil, false
	}
	return header.Filename, image, true
}

func buildDecodeResponse(resp *usecase.DecodeAssetResponse) decodeResponse {
	out := decodeResponse{}
	switch {
	case resp.ManifestErr != "":
		out.C2PAManifest = watermarkError{Error: resp.ManifestErr}
	case len(resp.Manifest) > 0:
		out.C2PAManifest = resp.Manifest
	default:
		out.C2PAManifest = nil
	}
	if resp.WatermarkErr != "" {
		out.Watermark = watermarkError{Error: resp.WatermarkErr}
	} else {
		out.Watermark = resp.Watermark
	}
	return out
}

// writeError maps domain errors onto the response taxonomy. Processing
// failures surface a generic message; the detail is already logged.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNoImage):
		writeErrorCode(c, http.StatusBadRequest, "NO_IMAGE", "no image file provided")
	case errors.Is(err, domain.ErrEmptyImage):
		writeErrorCode(c, http.StatusBadRequest, "EMPTY_IMAGE", "empty image upload")
	case errors.Is(err, domain.ErrPolicyDenied):
		writeErrorCode(c, http.StatusForbidden, "POLICY_DENIED", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	default:
		writeErrorCode(c, http.StatusInternalServerError, "PROCESSING_FAILED", "error during processing")
	}
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{
		Code:    code,
		Message: message,
	})
}
