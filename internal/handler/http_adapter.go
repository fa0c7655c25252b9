package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
)

// HTTPTriggerRequest represents the structure of the JSON payload for HTTP triggers.
type HTTPTriggerRequest struct {
	Data struct {
		Req struct {
			URL             string              `json:"Url"`
			Method          string              `json:"Method"`
			Query           map[string]string   `json:"Query"`
			Headers         map[string][]string `json:"Headers"`
			Params          map[string]string   `json:"Params"`
			Body            string              `json:"Body"`
			IsBase64Encoded bool                `json:"isBase64Encoded"`
		} `json:"req"`
	} `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// HTTPTriggerResponse represents the structure of the JSON response for HTTP triggers.
type HTTPTriggerResponse struct {
	Outputs struct {
		Res struct {
			StatusCode int               `json:"statusCode"`
			Headers    map[string]string `json:"headers"`
			Body       string            `json:"body"`
		} `json:"res"`
	} `json:"Outputs"`
	Logs        []string `json:"Logs,omitempty"`
	ReturnValue any      `json:"ReturnValue,omitempty"`
}

// requestBody decodes the wrapped body. Multipart uploads arrive base64
// encoded even when the host omits isBase64Encoded.
func requestBody(body string, isBase64 bool, contentType string) []byte {
	if body == "" {
		return nil
	}
	if isBase64 || strings.HasPrefix(contentType, "multipart/") {
		if decoded, err := base64.StdEncoding.DecodeString(body); err == nil {
			return decoded
		} else if isBase64 {
			slog.Warn("body flagged as base64 failed to decode, using raw", "error", err)
		}
	}
	return []byte(body)
}

// HandleHttpTrigger adapts the Azure Functions JSON POST request to a standard HTTP request/response.
// It wraps the provided Next handler (usually the ServeMux).
func (d *Dependencies) HandleHttpTrigger(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			slog.Error("failed to read HTTP trigger body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}

		var invokeReq HTTPTriggerRequest
		if err := json.Unmarshal(bodyBytes, &invokeReq); err != nil {
			slog.Error("failed to unmarshal HTTP trigger request", "error", err)
			http.Error(w, "Failed to unmarshal request", http.StatusBadRequest)
			return
		}

		reqData := invokeReq.Data.Req
		slog.Debug("processing wrapped HTTP request", "method", reqData.Method, "url", reqData.URL)

		contentType := ""
		for k, v := range reqData.Headers {
			if strings.EqualFold(k, "Content-Type") && len(v) > 0 {
				contentType = v[0]
			}
		}

		var bodyReader io.Reader = http.NoBody
		if b := requestBody(reqData.Body, reqData.IsBase64Encoded, contentType); b != nil {
			bodyReader = bytes.NewReader(b)
		}

		newReq, err := http.NewRequestWithContext(r.Context(), reqData.Method, reqData.URL, bodyReader)
		if err != nil {
			slog.Error("failed to create internal request", "error", err)
			http.Error(w, "Failed to create internal request", http.StatusInternalServerError)
			return
		}

		for k, v := range reqData.Headers {
			for _, val := range v {
				newReq.Header.Add(k, val)
			}
		}
		if len(reqData.Query) > 0 {
			q := newReq.URL.Query()
			for k, v := range reqData.Query {
				if !q.Has(k) {
					q.Set(k, v)
				}
			}
			newReq.URL.RawQuery = q.Encode()
		}

		recorder := httptest.NewRecorder()
		next.ServeHTTP(recorder, newReq)

		respResult := recorder.Result()
		respBodyBytes, _ := io.ReadAll(respResult.Body)
		respResult.Body.Close()

		respHeaders := make(map[string]string, len(respResult.Header))
		for k, v := range respResult.Header {
			respHeaders[k] = strings.Join(v, ", ")
		}

		jsonResp := HTTPTriggerResponse{}
		jsonResp.Outputs.Res.StatusCode = respResult.StatusCode
		jsonResp.Outputs.Res.Headers = respHeaders
		jsonResp.Outputs.Res.Body = string(respBodyBytes)

		slog.Info("wrapped HTTP request served", "method", newReq.Method, "path", newReq.URL.Path, "status", respResult.StatusCode)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(jsonResp); err != nil {
			slog.Error("failed to encode HTTP trigger response", "error", err)
		}
	}
}
