package decrypt

import (
	"bytes"
	"context"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"
)

// ErrWrongPassword signals that a backend rejected the supplied password.
// The prober treats it as a silent continue; any other backend error is
// logged and treated the same way.
var ErrWrongPassword = errors.New("wrong password")

// Backend attempts to open a protected document with a single password.
// An attempt succeeds only when it yields non-empty extracted text.
type Backend interface {
	// Name identifies the backend in logs and diagnostics.
	Name() string

	// Unlock tries the password against the document. On success it
	// returns the extracted text and, when the backend produces one, the
	// decrypted document bytes for downstream re-extraction.
	Unlock(ctx context.Context, doc []byte, password string) (text string, decrypted []byte, err error)
}

// ContainerBackend removes the document's encryption at the container level
// using pdfcpu, then verifies the result by extracting text from the
// decrypted bytes.
type ContainerBackend struct {
	// RelaxedValidation tolerates structurally sloppy documents, which is
	// common for statements produced by legacy generators.
	RelaxedValidation bool
}

// Name implements Backend
func (b *ContainerBackend) Name() string {
	return "container"
}

// Unlock implements Backend
func (b *ContainerBackend) Unlock(ctx context.Context, doc []byte, password string) (string, []byte, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password
	if b.RelaxedValidation {
		conf.ValidationMode = model.ValidationRelaxed
	}

	var decrypted bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(doc), &decrypted, conf); err != nil {
		if isWrongPasswordError(err) {
			return "", nil, ErrWrongPassword
		}
		return "", nil, errors.Wrap(err, "container decrypt failed")
	}

	text, err := plainText(decrypted.Bytes(), "")
	if err != nil {
		return "", nil, errors.Wrap(err, "decrypted document unreadable")
	}
	if strings.TrimSpace(text) == "" {
		return "", nil, errors.New("decrypted document yielded no text")
	}

	return text, decrypted.Bytes(), nil
}

// ReaderBackend authenticates the password through the PDF reader library
// and extracts page text directly, without rewriting the container.
type ReaderBackend struct{}

// Name implements Backend
func (b *ReaderBackend) Name() string {
	return "reader"
}

// Unlock implements Backend
func (b *ReaderBackend) Unlock(ctx context.Context, doc []byte, password string) (string, []byte, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	text, err := plainText(doc, password)
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return "", nil, ErrWrongPassword
		}
		return "", nil, err
	}
	if strings.TrimSpace(text) == "" {
		return "", nil, errors.New("authenticated document yielded no text")
	}

	return text, nil, nil
}

// plainText opens the document (optionally with a password) and
// concatenates per-page plain text. It recovers from reader panics, which
// the PDF library is known to produce on malformed input.
func plainText(doc []byte, password string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("pdf reader panic: %v", r)
		}
	}()

	var reader *pdf.Reader
	if password == "" {
		reader, err = pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
	} else {
		supplied := false
		reader, err = pdf.NewReaderEncrypted(bytes.NewReader(doc), int64(len(doc)), func() string {
			if supplied {
				return ""
			}
			supplied = true
			return password
		})
	}
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			font := page.Font(name)
			fonts[name] = &font
		}

		pageText, pageErr := page.GetPlainText(fonts)
		if pageErr != nil {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// isWrongPasswordError classifies pdfcpu failures that mean "bad password"
// rather than "broken document".
func isWrongPasswordError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "not authorized")
}
