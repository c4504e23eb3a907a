// =============================================================================
// lambda.go - API Gateway プロキシ用ハンドラ
// =============================================================================
//
// cmd/lambda/getlinks と cmd/lambda/generate から lambda.Start に渡す。
//
// 【レスポンス】
//   成功:   200 + {"links": [...]} / {"article": "..."}
//   失敗:   StatusCode(err) + {"error": "..."}
//   POST以外: 405 + {"error": "Method not allowed"}
//
// =============================================================================
package pipeline

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// ProxyHandler は API Gateway プロキシ統合のハンドラ
type ProxyHandler func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

type getLinksBody struct {
	Subject string `json:"subject"`
}

// GetLinksHandler は {subject} を受け取るハンドラを返す
func (s *Service) GetLinksHandler() ProxyHandler {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		if req.HTTPMethod != http.MethodPost {
			return jsonResponse(http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"}), nil
		}
		var body getLinksBody
		if err := decodeBody(req, &body); err != nil {
			return jsonResponse(http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"}), nil
		}

		resp, err := s.HandleGetLinks(ctx, body.Subject)
		if err != nil {
			return s.errorResponse(err), nil
		}
		return jsonResponse(http.StatusOK, resp), nil
	}
}

// GenerateHandler は {links, wordCount, headline, tone} を受け取るハンドラを返す
func (s *Service) GenerateHandler() ProxyHandler {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		if req.HTTPMethod != http.MethodPost {
			return jsonResponse(http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"}), nil
		}
		var body GenerationRequest
		if err := decodeBody(req, &body); err != nil {
			return jsonResponse(http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"}), nil
		}

		resp, err := s.HandleGenerate(ctx, body)
		if err != nil {
			return s.errorResponse(err), nil
		}
		return jsonResponse(http.StatusOK, resp), nil
	}
}

func (s *Service) errorResponse(err error) events.APIGatewayProxyResponse {
	status := StatusCode(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	} else {
		s.logger.Info("request rejected", zap.Error(err), zap.String("kind", KindOf(err).String()))
	}
	return jsonResponse(status, ErrorResponse{Error: UserMessage(err)})
}

func decodeBody(req events.APIGatewayProxyRequest, v any) error {
	raw := []byte(req.Body)
	if req.IsBase64Encoded {
		b, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return err
		}
		raw = b
	}
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	return json.Unmarshal(raw, v)
}

func jsonResponse(status int, v any) events.APIGatewayProxyResponse {
	b, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		b = []byte(`{"error":"Internal server error"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(b),
	}
}
