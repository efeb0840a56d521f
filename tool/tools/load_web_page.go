// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"google.golang.org/genai"

	"github.com/go-a2a/arovi/tool"
	"github.com/go-a2a/arovi/types"
)

// minWordsPerLine drops navigation fragments, single words and short subtitles.
const minWordsPerLine = 4

// WebPageTool represents a tool that can be used to load a web page.
type WebPageTool struct {
	*tool.Tool

	hc *http.Client
}

var _ types.Tool = (*WebPageTool)(nil)

// NewWebPageTool returns a [WebPageTool] named load_web_page using hc, or a client with a 20 second timeout when hc is nil.
func NewWebPageTool(hc *http.Client) *WebPageTool {
	if hc == nil {
		hc = &http.Client{Timeout: 20 * time.Second}
	}

	return &WebPageTool{
		Tool: tool.NewTool("load_web_page", "Fetches the content in the url and returns the text in it."),
		hc:   hc,
	}
}

// GetDeclaration implements [types.Tool].
func (t *WebPageTool) GetDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"url": {
					Type:        genai.TypeString,
					Description: "The URL to browse.",
				},
			},
			Required: []string{"url"},
		},
	}
}

// Run implements [types.Tool].
func (t *WebPageTool) Run(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
	uri, ok := args["url"].(string)
	if !ok || uri == "" {
		return nil, fmt.Errorf("url parameter is required and must be a non-empty string, got %T", args["url"])
	}

	return t.LoadWebPage(ctx, uri)
}

// ProcessLLMRequest implements [types.Tool].
func (t *WebPageTool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
	return tool.Declare(request, t)
}

// LoadWebPage fetches the content in the url and returns the text in it.
//
// A page that cannot be fetched yields a short failure notice instead of an
// error, so the model can carry on with its other sources.
func (t *WebPageTool) LoadWebPage(ctx context.Context, uri string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "arovi/1.0")

	resp, err := t.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("request %s: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Failed to fetch url: %s", uri), nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	var lines []string
	for _, line := range textLines(doc.Selection) {
		if len(strings.Fields(line)) >= minWordsPerLine {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n"), nil
}

// textLines returns the trimmed, non-empty text nodes below sel in document order.
func textLines(sel *goquery.Selection) []string {
	var lines []string
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "#text" {
			if text := strings.TrimSpace(s.Text()); text != "" {
				lines = append(lines, text)
			}
			return
		}
		lines = append(lines, textLines(s)...)
	})
	return lines
}
