package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jupiterHTTP is the request plumbing shared by the Jupiter token list and price clients.
type jupiterHTTP struct {
	client  *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger
}

func newJupiterHTTP(timeout time.Duration, logger *zap.Logger, name string) jupiterHTTP {
	if logger == nil {
		logger = zap.NewNop()
	}
	return jupiterHTTP{
		client:  &fasthttp.Client{},
		timeout: timeout,
		logger:  logger.Named(name),
	}
}

// getJSON issues a GET against requestURL and decodes a 200 response into out.
func (h jupiterHTTP) getJSON(ctx context.Context, requestURL string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := h.client.DoDeadline(req, resp, deadline); err != nil {
			h.logger.Error("Failed to execute request", zap.String("url", requestURL), zap.Error(err))
			return fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else {
		if err := h.client.DoTimeout(req, resp, h.timeout); err != nil {
			h.logger.Error("Failed to execute request (with default timeout)", zap.String("url", requestURL), zap.Error(err))
			return fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
		}
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		h.logger.Error("Jupiter API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody),
		)
		return fmt.Errorf("request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	if err := json.Unmarshal(rawBody, out); err != nil {
		h.logger.Error("Failed to unmarshal Jupiter response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err),
		)
		return fmt.Errorf("failed to unmarshal response from %s: %w", requestURL, err)
	}
	return nil
}

func trimBaseURL(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/")
}
