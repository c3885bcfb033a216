package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"mime/multipart"
	"net/http"
	"property-service/internal/core/domain"
	"property-service/internal/core/port"
	"strconv"
	"strings"
)

const (
	imagesField          = "images"
	multipartMemoryLimit = 8 << 20
)

// UploadLimits - ограничения на тело запроса с файлами
type UploadLimits struct {
	MaxFiles     int
	MaxFileBytes int64
}

func (l UploadLimits) maxBodyBytes() int64 {
	// файлы плюс запас на текстовые поля формы
	return int64(l.MaxFiles)*l.MaxFileBytes + 1<<20
}

// parsedRequest - поля и файлы. release закрывает открытые файлы формы.
type parsedRequest struct {
	fields  PropertyRequest
	files   []port.UploadedFile
	release func()
}

// parsePropertyRequest читает multipart-форму или JSON в зависимости от Content-Type
func parsePropertyRequest(w http.ResponseWriter, r *http.Request, limits UploadLimits) (*parsedRequest, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	switch mediaType {
	case "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, limits.maxBodyBytes())
		return parseMultipart(r, limits)
	case "application/json", "":
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		return parseJSON(r)
	default:
		return nil, domain.NewValidationError("", fmt.Sprintf("unsupported content type %q", mediaType))
	}
}

func parseJSON(r *http.Request) (*parsedRequest, error) {
	var req PropertyRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return &parsedRequest{release: func() {}}, nil
		}
		return nil, domain.NewValidationError("", "request body is not valid JSON")
	}
	return &parsedRequest{fields: req, release: func() {}}, nil
}

func parseMultipart(r *http.Request, limits UploadLimits) (*parsedRequest, error) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.NewValidationError(imagesField, "request body is too large")
		}
		return nil, domain.NewValidationError("", "malformed multipart form")
	}
	form := r.MultipartForm

	fields, err := formFields(form.Value)
	if err != nil {
		_ = form.RemoveAll()
		return nil, err
	}

	headers := form.File[imagesField]
	if limits.MaxFiles > 0 && len(headers) > limits.MaxFiles {
		_ = form.RemoveAll()
		return nil, domain.NewValidationError(imagesField, fmt.Sprintf("at most %d files per request", limits.MaxFiles))
	}

	var opened []multipart.File
	release := func() {
		for _, f := range opened {
			_ = f.Close()
		}
		_ = form.RemoveAll()
	}

	files := make([]port.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			release()
			return nil, fmt.Errorf("failed to open uploaded file %s: %w", fh.Filename, err)
		}
		opened = append(opened, f)
		files = append(files, port.UploadedFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Content:     f,
		})
	}

	return &parsedRequest{fields: fields, files: files, release: release}, nil
}

// formFields переводит текстовые поля формы в типизированный запрос. Пустое число = поле не передано.
func formFields(values map[string][]string) (PropertyRequest, error) {
	var req PropertyRequest
	req.Title = formString(values, "title")
	req.Description = formString(values, "description")
	req.Type = formString(values, "type")
	req.Location = formString(values, "location")

	if v := formString(values, "price"); v != nil && strings.TrimSpace(*v) != "" {
		price, err := strconv.ParseFloat(strings.TrimSpace(*v), 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
			return PropertyRequest{}, domain.NewValidationError("price", "must be a number")
		}
		req.Price = &price
	}

	var err error
	if req.Bedrooms, err = formInt(values, "bedrooms"); err != nil {
		return PropertyRequest{}, err
	}
	if req.Bathrooms, err = formInt(values, "bathrooms"); err != nil {
		return PropertyRequest{}, err
	}
	return req, nil
}

func formString(values map[string][]string, key string) *string {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return nil
	}
	s := v[0]
	return &s
}

func formInt(values map[string][]string, key string) (*int, error) {
	v := formString(values, key)
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*v))
	if err != nil {
		return nil, domain.NewValidationError(key, "must be an integer")
	}
	return &n, nil
}
