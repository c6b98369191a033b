// Package translate implements AI-powered translation of TS catalog
// messages using HTTP API-based providers: Google AI (Gemini), Groq,
// GitHub Copilot (native OAuth), Custom OpenAI, and Ollama.
//
// Translations that invent placeholder tokens absent from the source
// string are rejected and the message stays unfinished.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/linguakit/tskit/copilot"
	"github.com/linguakit/tskit/langmeta"
	ts "github.com/linguakit/tskit/tsfile"
)

// ---------------------------------------------------------------------------
// Provider IDs
// ---------------------------------------------------------------------------

const (
	ProviderGoogle       = "google"
	ProviderGroq         = "groq"
	ProviderCopilot      = "copilot"
	ProviderCustomOpenAI = "custom-openai"
	ProviderOllama       = "ollama"
)

// ---------------------------------------------------------------------------
// Parallelization modes
// ---------------------------------------------------------------------------

const (
	ParallelSequential   = "sequential"
	ParallelFullParallel = "full-parallel"
)

// DefaultSystemPrompt instructs the model on Qt UI string translation.
const DefaultSystemPrompt = `You are a professional translator specializing in software localization. You are translating UI strings for a desktop GIS application plugin.

CONTEXT AWARENESS:
- The audience is GIS analysts and desktop application users
- Tone: professional yet approachable, clear and concise
- Use GIS and software terminology that is standard in {{targetLang}}

IMPORTANT TRANSLATION PRINCIPLES:
- Translate for NATURALNESS and FLUENCY in the target language, not word-for-word
- Use idiomatic expressions natural to {{targetLang}}, not literal translations
- Adapt sentence structure to match {{targetLang}} conventions
- Maintain the original tone and intent, but express it naturally in {{targetLang}}

TECHNICAL REQUIREMENTS:
- Return ONLY a JSON array of translated strings, one for each input entry, in the same order.
- Preserve all placeholder tokens exactly as-is: {name}, {0}, %1, %2, %n.
- Never introduce placeholder tokens that are not present in the source string.
- Preserve leading/trailing whitespace, newlines, ampersand accelerators (&File) and punctuation patterns.
- Keep brand names, layer names and proper nouns unchanged.
- Return ONLY the JSON array, no explanations or markdown code blocks.`

// ---------------------------------------------------------------------------
// Provider configuration
// ---------------------------------------------------------------------------

// Provider holds the configuration for an AI translation service.
type Provider struct {
	// ID is the provider identifier (google, groq, ...).
	ID string
	// Name is the display name.
	Name string
	// BaseURL is the API base URL.
	BaseURL string
	// APIKey is the authentication key (empty for local services).
	APIKey string
	// Model is the model identifier.
	Model string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the request timeout.
	Timeout time.Duration
}

// DefaultProviders returns the pre-configured provider definitions.
func DefaultProviders() map[string]Provider {
	return map[string]Provider{
		ProviderGoogle: {
			ID:      ProviderGoogle,
			Name:    "Google AI (Gemini)",
			BaseURL: "https://generativelanguage.googleapis.com",
			Timeout: 120 * time.Second,
		},
		ProviderGroq: {
			ID:      ProviderGroq,
			Name:    "Groq",
			BaseURL: "https://api.groq.com/openai/v1",
			Timeout: 60 * time.Second,
		},
		ProviderCopilot: {
			ID:      ProviderCopilot,
			Name:    "GitHub Copilot",
			BaseURL: copilot.CopilotAPIBase,
			Timeout: 120 * time.Second,
		},
		ProviderCustomOpenAI: {
			ID:      ProviderCustomOpenAI,
			Name:    "Custom OpenAI",
			Timeout: 60 * time.Second,
		},
		ProviderOllama: {
			ID:      ProviderOllama,
			Name:    "Ollama",
			BaseURL: "http://localhost:11434",
			Timeout: 120 * time.Second,
		},
	}
}

// ---------------------------------------------------------------------------
// Translation options
// ---------------------------------------------------------------------------

// Options controls the translation behavior.
type Options struct {
	// Provider is the AI provider configuration.
	Provider Provider
	// Language is the target locale code (e.g., "de_DE").
	Language string
	// LanguageName is the human-readable name ("German"). Resolved from
	// Language when empty.
	LanguageName string
	// ChunkSize is how many strings to translate per API call (0 = all
	// at once).
	ChunkSize int
	// ParallelMode is sequential or full-parallel.
	ParallelMode string
	// MaxConcurrent caps concurrent chunks in full-parallel mode.
	MaxConcurrent int
	// RequestDelay is the delay between launching parallel tasks.
	RequestDelay time.Duration
	// Timeout is the per-request timeout (overrides provider timeout).
	Timeout time.Duration
	// MaxRetries is the maximum number of retries on 429. Default 3.
	MaxRetries int
	// RetranslateExisting re-translates finished entries too.
	RetranslateExisting bool
	// SkipMessage, when set, excludes messages from translation. Used
	// for lockfile-based incremental runs.
	SkipMessage func(context string, m *ts.Message) bool
	// SystemPrompt overrides the default system prompt.
	SystemPrompt string
	// OnProgress is called after each chunk is translated.
	OnProgress func(lang string, done, total int)
	// OnLog emits log messages during translation.
	OnLog func(format string, args ...any)
	// OnError emits error messages during translation.
	OnError func(format string, args ...any)
	// Verbose enables detailed logging.
	Verbose bool
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	} else if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) effectiveMaxRetries() int {
	if o.MaxRetries > 0 {
		return o.MaxRetries
	}
	return 3
}

func (o *Options) effectiveChunkSize() int {
	if o.ChunkSize > 0 {
		return o.ChunkSize
	}
	return 0
}

func (o *Options) effectiveMaxConcurrent() int {
	if o.MaxConcurrent > 0 {
		return o.MaxConcurrent
	}
	return 3
}

// resolvedPrompt returns the system prompt with {{targetLang}} replaced.
func (o *Options) resolvedPrompt() string {
	prompt := o.SystemPrompt
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}
	langName := o.LanguageName
	if langName == "" {
		langName = langmeta.EnglishName(o.Language)
	}
	return strings.ReplaceAll(prompt, "{{targetLang}}", langName)
}

// ---------------------------------------------------------------------------
// Rate limit state (global pause for parallel workers)
// ---------------------------------------------------------------------------

type rateLimitState struct {
	mu       sync.Mutex
	paused   int32 // atomic: 1 = paused
	pauseEnd time.Time
}

func (r *rateLimitState) isPaused() bool {
	return atomic.LoadInt32(&r.paused) == 1
}

func (r *rateLimitState) pause(duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pauseEnd = time.Now().Add(duration)
	atomic.StoreInt32(&r.paused, 1)
}

func (r *rateLimitState) unpause() {
	atomic.StoreInt32(&r.paused, 0)
}

// waitIfPaused blocks until the rate limit pause is over.
func (r *rateLimitState) waitIfPaused(ctx context.Context) error {
	for r.isPaused() {
		r.mu.Lock()
		remaining := time.Until(r.pauseEnd)
		r.mu.Unlock()
		if remaining <= 0 {
			r.unpause()
			return nil
		}
		if remaining > 100*time.Millisecond {
			remaining = 100 * time.Millisecond
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(remaining):
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// HTTP client with proxy support
// ---------------------------------------------------------------------------

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		if parsed, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// ---------------------------------------------------------------------------
// Request builders
// ---------------------------------------------------------------------------

type apiFormat int

const (
	formatOpenAIChat   apiFormat = iota // OpenAI chat/completions
	formatGeminiNative                  // Google Gemini generateContent
)

func buildOpenAIChatRequest(model, systemPrompt, userPrompt string, temperature float64) ([]byte, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	req := struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature"`
		Stream      bool    `json:"stream"`
	}{
		Model: model,
		Messages: []msg{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: temperature,
	}
	return json.Marshal(req)
}

func buildGeminiRequest(systemPrompt, userPrompt string, temperature float64) ([]byte, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Role  string `json:"role,omitempty"`
		Parts []part `json:"parts"`
	}
	type genConfig struct {
		Temperature float64 `json:"temperature"`
	}
	req := struct {
		Contents          []content `json:"contents"`
		GenerationConfig  genConfig `json:"generationConfig"`
		SystemInstruction *content  `json:"systemInstruction,omitempty"`
	}{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: userPrompt}}},
		},
		GenerationConfig: genConfig{Temperature: temperature},
	}
	if systemPrompt != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: systemPrompt}}}
	}
	return json.Marshal(req)
}

// ---------------------------------------------------------------------------
// Response parsing
// ---------------------------------------------------------------------------

// extractResponseText tries all known response formats and returns the
// model's text.
func extractResponseText(body []byte) (string, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}

	if errObj, ok := raw["error"]; ok {
		if errMap, ok := errObj.(map[string]any); ok {
			if msg, ok := errMap["message"].(string); ok {
				return "", fmt.Errorf("API error: %s", msg)
			}
		}
		return "", fmt.Errorf("API error: %v", errObj)
	}

	// OpenAI chat format: choices[0].message.content
	if choices, ok := raw["choices"].([]any); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]any); ok {
			if message, ok := choice["message"].(map[string]any); ok {
				if content, ok := message["content"].(string); ok {
					return content, nil
				}
			}
		}
	}

	// Gemini format: candidates[0].content.parts[0].text
	if candidates, ok := raw["candidates"].([]any); ok && len(candidates) > 0 {
		if candidate, ok := candidates[0].(map[string]any); ok {
			if content, ok := candidate["content"].(map[string]any); ok {
				if parts, ok := content["parts"].([]any); ok && len(parts) > 0 {
					if part, ok := parts[0].(map[string]any); ok {
						if text, ok := part["text"].(string); ok {
							return text, nil
						}
					}
				}
			}
		}
	}

	return "", fmt.Errorf("could not extract text from response: %s", truncate(string(body), 500))
}

// parseRetryDelay extracts the retry delay from a 429 response body,
// understanding Google's RetryInfo detail. Defaults to 65s.
func parseRetryDelay(body []byte) time.Duration {
	const defaultDelay = 65 * time.Second

	var errResp struct {
		Error struct {
			Details []struct {
				Type       string `json:"@type"`
				RetryDelay string `json:"retryDelay"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		return defaultDelay
	}
	for _, detail := range errResp.Error.Details {
		if strings.Contains(detail.Type, "RetryInfo") && detail.RetryDelay != "" {
			d := strings.TrimSuffix(detail.RetryDelay, "s")
			if secs, err := strconv.ParseFloat(d, 64); err == nil {
				return time.Duration(secs*1000)*time.Millisecond + 5*time.Second
			}
		}
	}
	return defaultDelay
}

// ---------------------------------------------------------------------------
// Provider dispatch
// ---------------------------------------------------------------------------

// callProvider sends a prompt to the configured provider and returns
// the response text.
func callProvider(ctx context.Context, prov Provider, systemPrompt, userPrompt string, rl *rateLimitState, maxRetries int, verbose bool) (string, error) {
	switch prov.ID {
	case ProviderGoogle:
		return callHTTPProvider(ctx, prov, systemPrompt, userPrompt, formatGeminiNative, rl, maxRetries, verbose)
	case ProviderCopilot:
		return callCopilot(ctx, prov, systemPrompt, userPrompt, rl, maxRetries, verbose)
	default:
		// Groq, Custom OpenAI, Ollama and anything else speak the
		// OpenAI chat completions dialect.
		return callHTTPProvider(ctx, prov, systemPrompt, userPrompt, formatOpenAIChat, rl, maxRetries, verbose)
	}
}

func callHTTPProvider(ctx context.Context, prov Provider, systemPrompt, userPrompt string, format apiFormat, rl *rateLimitState, maxRetries int, verbose bool) (string, error) {
	endpoint, headers, body, err := buildHTTPRequest(prov, systemPrompt, userPrompt, format)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	client := makeHTTPClient(prov.Proxy, prov.Timeout)

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if rl != nil {
			if err := rl.waitIfPaused(ctx); err != nil {
				return "", err
			}
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("creating request: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		if verbose {
			log.Printf("[DEBUG] %s attempt %d: POST %s", prov.Name, attempt+1, endpoint)
		}

		resp, err := client.Do(req)
		if err != nil {
			if attempt < maxRetries {
				if err := backoff(ctx, attempt); err != nil {
					return "", err
				}
				continue
			}
			return "", fmt.Errorf("API request failed: %w", err)
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			retryDelay := parseRetryDelay(respBody)
			if verbose {
				log.Printf("[WARN] 429 rate limited, waiting %v before retry (attempt %d/%d)", retryDelay, attempt+1, maxRetries)
			}
			if rl != nil {
				rl.pause(retryDelay)
			}
			if attempt < maxRetries {
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(retryDelay):
				}
				if rl != nil {
					rl.unpause()
				}
				continue
			}
			return "", fmt.Errorf("rate limited after %d retries: %s", maxRetries, string(respBody))
		}

		if resp.StatusCode != http.StatusOK {
			if attempt < maxRetries && resp.StatusCode >= 500 {
				if err := backoff(ctx, attempt); err != nil {
					return "", err
				}
				continue
			}
			return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 500))
		}

		return extractResponseText(respBody)
	}

	return "", fmt.Errorf("exhausted all %d retries", maxRetries)
}

func buildHTTPRequest(prov Provider, systemPrompt, userPrompt string, format apiFormat) (string, map[string]string, []byte, error) {
	headers := map[string]string{
		"Content-Type": "application/json",
	}

	var endpoint string
	var body []byte
	var err error

	switch format {
	case formatGeminiNative:
		// Google AI: POST /v1beta/models/{model}:generateContent
		endpoint = fmt.Sprintf("%s/v1beta/models/%s:generateContent",
			strings.TrimRight(prov.BaseURL, "/"), prov.Model)
		if prov.APIKey != "" {
			headers["x-goog-api-key"] = prov.APIKey
		}
		body, err = buildGeminiRequest(systemPrompt, userPrompt, 0.3)

	default: // formatOpenAIChat
		baseURL := strings.TrimRight(prov.BaseURL, "/")
		if !strings.HasSuffix(baseURL, "/chat/completions") {
			endpoint = baseURL + "/chat/completions"
		} else {
			endpoint = baseURL
		}
		if prov.APIKey != "" {
			headers["Authorization"] = "Bearer " + prov.APIKey
		}
		body, err = buildOpenAIChatRequest(prov.Model, systemPrompt, userPrompt, 0.3)
	}

	if err != nil {
		return "", nil, nil, err
	}
	return endpoint, headers, body, nil
}

// callCopilot authenticates with GitHub Copilot and calls the API using
// the OpenAI chat completions format against api.githubcopilot.com.
func callCopilot(ctx context.Context, prov Provider, systemPrompt, userPrompt string, rl *rateLimitState, maxRetries int, verbose bool) (string, error) {
	accessToken, err := copilot.EnsureAuth(ctx)
	if err != nil {
		return "", fmt.Errorf("Copilot authentication failed: %w", err)
	}

	body, err := buildOpenAIChatRequest(prov.Model, systemPrompt, userPrompt, 0.3)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	endpoint := strings.TrimRight(prov.BaseURL, "/") + "/chat/completions"
	client := makeHTTPClient(prov.Proxy, prov.Timeout)

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if rl != nil {
			if err := rl.waitIfPaused(ctx); err != nil {
				return "", err
			}
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		copilot.SetAuthHeaders(req, accessToken)

		if verbose {
			log.Printf("[DEBUG] copilot attempt %d: POST %s (model: %s)", attempt+1, endpoint, prov.Model)
		}

		resp, err := client.Do(req)
		if err != nil {
			if attempt < maxRetries {
				if err := backoff(ctx, attempt); err != nil {
					return "", err
				}
				continue
			}
			return "", fmt.Errorf("Copilot API request failed: %w", err)
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized {
			// Token may be expired, re-authenticate once.
			if attempt == 0 {
				if verbose {
					log.Printf("[WARN] Copilot returned 401, re-authenticating...")
				}
				_ = copilot.DeleteToken()
				newToken, err := copilot.EnsureAuth(ctx)
				if err != nil {
					return "", fmt.Errorf("Copilot re-authentication failed: %w", err)
				}
				accessToken = newToken
				continue
			}
			return "", fmt.Errorf("Copilot authentication failed (401): %s", truncate(string(respBody), 300))
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			retryDelay := parseRetryDelay(respBody)
			if rl != nil {
				rl.pause(retryDelay)
			}
			if attempt < maxRetries {
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(retryDelay):
				}
				if rl != nil {
					rl.unpause()
				}
				continue
			}
			return "", fmt.Errorf("Copilot rate limited after %d retries: %s", maxRetries, string(respBody))
		}

		if resp.StatusCode != http.StatusOK {
			if attempt < maxRetries && resp.StatusCode >= 500 {
				if err := backoff(ctx, attempt); err != nil {
					return "", err
				}
				continue
			}
			return "", fmt.Errorf("Copilot API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 500))
		}

		return extractResponseText(respBody)
	}

	return "", fmt.Errorf("Copilot: exhausted all %d retries", maxRetries)
}

// backoff sleeps for an exponentially growing interval.
func backoff(ctx context.Context, attempt int) error {
	wait := time.Duration(math.Pow(2, float64(attempt))) * time.Second
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// ---------------------------------------------------------------------------
// Translation response parsing
// ---------------------------------------------------------------------------

var markdownCodeBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// numerusTranslation holds the result for one message: either a single
// string or one form per plural index for numerus messages.
type numerusTranslation struct {
	single string
	forms  []string // non-nil only for numerus messages
}

// parseNumerusTranslations parses the model response into one
// numerusTranslation per message, tolerating strings where arrays were
// expected and short form lists.
func parseNumerusTranslations(content string, msgs []ts.MessageRef, nplurals int) ([]numerusTranslation, error) {
	content = strings.TrimSpace(content)

	if m := markdownCodeBlock.FindStringSubmatch(content); len(m) > 1 {
		content = m[1]
	}

	startIdx := strings.Index(content, "[")
	endIdx := strings.LastIndex(content, "]")
	if startIdx >= 0 && endIdx > startIdx {
		content = content[startIdx : endIdx+1]
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse translation response as JSON array: %w\nResponse: %s", err, truncate(content, 300))
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("got 0 translations, expected %d", len(msgs))
	}

	result := make([]numerusTranslation, len(msgs))
	for i, ref := range msgs {
		if i >= len(raw) {
			break
		}
		elem := raw[i]

		if ref.Message.Numerus {
			var forms []string
			if err := json.Unmarshal(elem, &forms); err != nil {
				// The model returned a plain string: use it for all forms.
				var s string
				if err2 := json.Unmarshal(elem, &s); err2 == nil {
					forms = make([]string, nplurals)
					for j := range forms {
						forms[j] = s
					}
				}
			}
			for len(forms) < nplurals {
				if len(forms) > 0 {
					forms = append(forms, forms[len(forms)-1])
				} else {
					forms = append(forms, "")
				}
			}
			result[i] = numerusTranslation{forms: forms[:nplurals]}
		} else {
			var s string
			if err := json.Unmarshal(elem, &s); err != nil {
				var arr []string
				if err2 := json.Unmarshal(elem, &arr); err2 == nil && len(arr) > 0 {
					s = arr[0]
				}
			}
			result[i] = numerusTranslation{single: s}
		}
	}
	return result, nil
}

// npluralsForLang returns the number of plural forms a locale needs.
func npluralsForLang(lang string) int {
	base := lang
	if idx := strings.IndexAny(lang, "_-"); idx > 0 {
		base = lang[:idx]
	}
	switch base {
	case "ja", "ko", "zh", "vi", "th", "id", "ms":
		return 1
	case "ru", "uk", "be", "hr", "sr", "bs", "pl", "cs", "sk", "ro", "lt", "lv":
		return 3
	case "ar":
		return 6
	default:
		return 2
	}
}

// ---------------------------------------------------------------------------
// Placeholder verification
// ---------------------------------------------------------------------------

// placeholdersOK reports whether every placeholder token in the
// translation also occurs in the source string.
func placeholdersOK(source, translation string) bool {
	allowed := make(map[string]bool)
	for _, tok := range ts.Placeholders(source) {
		allowed[tok] = true
	}
	for _, tok := range ts.Placeholders(translation) {
		if !allowed[tok] {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Core translation logic
// ---------------------------------------------------------------------------

// Translate fills in unfinished messages of a TS catalog using the
// configured provider. Translations with invented placeholders are
// rejected and their messages stay unfinished.
func Translate(ctx context.Context, file *ts.File, opts Options) error {
	toTranslate := collectMessages(file, opts)
	if len(toTranslate) == 0 {
		return nil
	}

	chunkSize := opts.effectiveChunkSize()
	if chunkSize == 0 {
		chunkSize = len(toTranslate)
	}

	rl := &rateLimitState{}
	total := len(toTranslate)
	chunks := splitMessages(toTranslate, chunkSize)
	systemPrompt := opts.resolvedPrompt()
	nplurals := npluralsForLang(opts.Language)
	done := 0

	for i, chunk := range chunks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if opts.Verbose {
			opts.log("  Chunk %d/%d (%d entries)", i+1, len(chunks), len(chunk))
		}

		translations, err := translateChunk(ctx, chunk, systemPrompt, opts, rl, nplurals)
		if err != nil {
			return fmt.Errorf("translating chunk %d/%d: %w", i+1, len(chunks), err)
		}
		applyTranslations(chunk, translations, &opts)

		done += len(chunk)
		if opts.OnProgress != nil {
			opts.OnProgress(opts.Language, done, total)
		}

		if i < len(chunks)-1 && opts.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.RequestDelay):
			}
		}
	}

	return nil
}

// collectMessages gathers messages that need translation.
func collectMessages(file *ts.File, opts Options) []ts.MessageRef {
	var out []ts.MessageRef
	for _, c := range file.Contexts {
		for _, msg := range c.Messages {
			if msg.Source == "" || msg.IsObsolete() {
				continue
			}
			if !opts.RetranslateExisting && msg.IsFinished() {
				continue
			}
			if opts.SkipMessage != nil && opts.SkipMessage(c.Name, msg) {
				continue
			}
			out = append(out, ts.MessageRef{Context: c.Name, Message: msg})
		}
	}
	return out
}

func splitMessages(msgs []ts.MessageRef, chunkSize int) [][]ts.MessageRef {
	if chunkSize <= 0 || chunkSize >= len(msgs) {
		return [][]ts.MessageRef{msgs}
	}
	var chunks [][]ts.MessageRef
	for i := 0; i < len(msgs); i += chunkSize {
		end := i + chunkSize
		if end > len(msgs) {
			end = len(msgs)
		}
		chunks = append(chunks, msgs[i:end])
	}
	return chunks
}

// translateChunk sends one chunk to the provider and parses the reply.
func translateChunk(ctx context.Context, msgs []ts.MessageRef, systemPrompt string, opts Options, rl *rateLimitState, nplurals int) ([]numerusTranslation, error) {
	var userMsg strings.Builder
	userMsg.WriteString("Translate these entries:\n\n")

	for i, ref := range msgs {
		if ref.Message.Numerus {
			userMsg.WriteString(fmt.Sprintf("%d. %s\n", i+1, escapeForPrompt(ref.Message.Source)))
			userMsg.WriteString(fmt.Sprintf("   (return an array of exactly %d plural forms; %%n is the count)\n", nplurals))
		} else {
			userMsg.WriteString(fmt.Sprintf("%d. %s\n", i+1, escapeForPrompt(ref.Message.Source)))
		}
		if ref.Context != "" {
			userMsg.WriteString(fmt.Sprintf("   (UI context: %s)\n", ref.Context))
		}
	}

	userMsg.WriteString(fmt.Sprintf("\nReturn a JSON array with exactly %d elements. ", len(msgs)))
	userMsg.WriteString("For plural entries return an array of strings (one per plural form); for everything else return a string.")

	text, err := callProvider(ctx, opts.Provider, systemPrompt, userMsg.String(), rl, opts.effectiveMaxRetries(), opts.Verbose)
	if err != nil {
		return nil, err
	}
	return parseNumerusTranslations(text, msgs, nplurals)
}

// applyTranslations writes accepted translations back into the catalog.
// A message becomes finished only when its translation passes the
// placeholder check; rejected translations are dropped.
func applyTranslations(msgs []ts.MessageRef, translations []numerusTranslation, opts *Options) {
	for i, ref := range msgs {
		if i >= len(translations) {
			break
		}
		t := translations[i]
		msg := ref.Message

		if msg.Numerus {
			if len(t.forms) == 0 {
				continue
			}
			ok := true
			for _, form := range t.forms {
				if form == "" || !placeholdersOK(msg.Source, form) {
					ok = false
					break
				}
			}
			if !ok {
				opts.logError("  rejected %q: translation invents placeholder tokens", msg.Source)
				continue
			}
			msg.NumerusForms = t.forms
			msg.Type = ts.TypeFinished
		} else {
			if t.single == "" {
				continue
			}
			if !placeholdersOK(msg.Source, t.single) {
				opts.logError("  rejected %q: translation invents placeholder tokens", msg.Source)
				continue
			}
			msg.Translation = t.single
			msg.Type = ts.TypeFinished
		}
	}
}

// ---------------------------------------------------------------------------
// Multi-catalog translation
// ---------------------------------------------------------------------------

// LangTask is a per-locale catalog translation task.
type LangTask struct {
	Lang string
	File *ts.File
	Path string
}

// TranslateAll translates multiple catalogs according to
// opts.ParallelMode, saving each catalog as it completes.
func TranslateAll(ctx context.Context, tasks []LangTask, opts Options) error {
	if opts.ParallelMode == ParallelFullParallel {
		return translateFullParallel(ctx, tasks, opts)
	}
	return translateSequential(ctx, tasks, opts)
}

func translateSequential(ctx context.Context, tasks []LangTask, opts Options) error {
	var failed []string
	for _, task := range tasks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		taskOpts := opts
		taskOpts.Language = task.Lang
		taskOpts.LanguageName = langmeta.EnglishName(task.Lang)

		toTranslate := collectMessages(task.File, opts)
		if len(toTranslate) == 0 {
			continue
		}

		opts.log("Translating %s (%s) — %d entries...", task.Lang, taskOpts.LanguageName, len(toTranslate))

		if err := Translate(ctx, task.File, taskOpts); err != nil {
			if ctx.Err() != nil {
				saveCatalog(task.File, task.Path, opts)
				return ctx.Err()
			}
			opts.logError("Error translating %s: %v", task.Lang, err)
			failed = append(failed, task.Lang)
			continue
		}

		saveCatalog(task.File, task.Path, opts)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d language(s) failed: %s", len(failed), strings.Join(failed, ", "))
	}
	return nil
}

// translateFullParallel flattens all lang/chunk combinations and runs up
// to MaxConcurrent of them simultaneously.
func translateFullParallel(ctx context.Context, tasks []LangTask, opts Options) error {
	rl := &rateLimitState{}

	type flatTask struct {
		lang         string
		chunk        []ts.MessageRef
		file         *ts.File
		path         string
		systemPrompt string
		nplurals     int
		total        *int64
		done         *int64
	}

	var flatTasks []flatTask
	for _, task := range tasks {
		taskOpts := opts
		taskOpts.Language = task.Lang
		taskOpts.LanguageName = langmeta.EnglishName(task.Lang)

		toTranslate := collectMessages(task.File, opts)
		if len(toTranslate) == 0 {
			continue
		}

		chunkSize := opts.effectiveChunkSize()
		if chunkSize == 0 {
			chunkSize = len(toTranslate)
		}

		total := int64(len(toTranslate))
		done := int64(0)
		systemPrompt := taskOpts.resolvedPrompt()
		nplurals := npluralsForLang(task.Lang)

		for _, chunk := range splitMessages(toTranslate, chunkSize) {
			flatTasks = append(flatTasks, flatTask{
				lang:         task.Lang,
				chunk:        chunk,
				file:         task.File,
				path:         task.Path,
				systemPrompt: systemPrompt,
				nplurals:     nplurals,
				total:        &total,
				done:         &done,
			})
		}
	}
	if len(flatTasks) == 0 {
		return nil
	}

	// One mutex per catalog guards concurrent writes.
	fileMu := make(map[string]*sync.Mutex)
	for _, ft := range flatTasks {
		if _, ok := fileMu[ft.path]; !ok {
			fileMu[ft.path] = &sync.Mutex{}
		}
	}

	err := runParallel(ctx, flatTasks, opts.effectiveMaxConcurrent(), opts.RequestDelay, func(ctx context.Context, ft flatTask) error {
		taskOpts := opts
		taskOpts.Language = ft.lang
		taskOpts.LanguageName = langmeta.EnglishName(ft.lang)

		translations, err := translateChunk(ctx, ft.chunk, ft.systemPrompt, taskOpts, rl, ft.nplurals)
		if err != nil {
			return err
		}

		mu := fileMu[ft.path]
		mu.Lock()
		applyTranslations(ft.chunk, translations, &taskOpts)
		mu.Unlock()

		newDone := atomic.AddInt64(ft.done, int64(len(ft.chunk)))
		if opts.OnProgress != nil {
			opts.OnProgress(ft.lang, int(newDone), int(atomic.LoadInt64(ft.total)))
		}
		return nil
	})

	saved := make(map[string]bool)
	for _, ft := range flatTasks {
		if !saved[ft.path] {
			saveCatalog(ft.file, ft.path, opts)
			saved[ft.path] = true
		}
	}

	return err
}

// runParallel runs tasks with a concurrency limit and launch delay.
func runParallel[T any](ctx context.Context, tasks []T, maxConcurrent int, delay time.Duration, fn func(context.Context, T) error) error {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once

	for i, task := range tasks {
		if ctx.Err() != nil {
			break
		}
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(delay):
			}
		}

		sem <- struct{}{}
		wg.Add(1)

		go func(t T) {
			defer func() {
				<-sem
				wg.Done()
			}()
			if err := fn(ctx, t); err != nil {
				errOnce.Do(func() {
					firstErr = err
				})
			}
		}(task)
	}

	wg.Wait()
	return firstErr
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func saveCatalog(file *ts.File, path string, opts Options) {
	if path == "" {
		return
	}
	if err := file.WriteFile(path); err != nil {
		opts.logError("Failed to save %s: %v", path, err)
	} else {
		opts.log("Saved %s", path)
	}
}

func escapeForPrompt(s string) string {
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
