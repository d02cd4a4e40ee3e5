package trello

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	apperrors "oficina-system/pkg/errors"
)

// maxErrorBody - сколько байт тела ответа с ошибкой попадает в текст ошибки.
const maxErrorBody = 512

// doRequest добавляет key/token в query и считает ошибкой любой ответ вне 2xx.
func (p *Provider) doRequest(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("key", p.apiKey)
	query.Set("token", p.token)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка сериализации тела запроса: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path+"?"+query.Encode(), reader)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания %s-запроса: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", apperrors.ErrExternalAPI, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: чтение ответа %s %s: %v", apperrors.ErrExternalAPI, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, fmt.Errorf("%w: %s %s вернул статус %s: %s", apperrors.ErrExternalAPI, method, path, resp.Status, string(data))
	}
	return data, nil
}

func (p *Provider) fetchData(ctx context.Context, endpoint string, query url.Values) (json.RawMessage, error) {
	return p.doRequest(ctx, http.MethodGet, endpoint, query, nil)
}
