package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/imroc/req/v3"

	"study-companion/internal/domain"
)

// Client uploads documents to the flashcard generation endpoint.
// The endpoint answers with [{"output": [questions...]}].
type Client struct {
	http *req.Client
	path string
}

func NewClient(baseURL, path string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		http: req.C().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetUserAgent("study-companion"),
		path: path,
	}
}

// Generate posts the document as multipart field "file" and parses the returned flashcards.
func (c *Client) Generate(ctx context.Context, doc domain.Document) (domain.QuestionSet, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", doc.Name, doc.Content).
		Post(c.path)
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	if !resp.IsSuccessState() {
		return domain.QuestionSet{}, fmt.Errorf("%w: status %d", domain.ErrGenerationFailed, resp.StatusCode)
	}

	set, err := domain.ParseGenerationResponse(resp.Bytes())
	if err != nil {
		return domain.QuestionSet{}, err
	}
	return set, nil
}
