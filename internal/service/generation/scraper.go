package generation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// MaxScrapeChars ограничивает текст страницы, возвращаемый модели.
// Лимит считается в символах (рунах), не в байтах.
const MaxScrapeChars = 3500

const scraperUserAgent = "QuizForgeBot/1.0"

// Scraper загружает веб-страницу и извлекает видимый текст для
// обоснования генерируемых викторин. Ошибки загрузки возвращаются как
// текст, а не как error: модель видит, что пошло не так, и может
// продолжить без страницы.
type Scraper struct {
	client *http.Client
}

// NewScraper создает скрейпер с таймаутом загрузки 10 секунд
func NewScraper() *Scraper {
	return &Scraper{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Scrape загружает url и возвращает очищенный видимый текст, обрезанный
// до MaxScrapeChars. Содержимое script, style и noscript отбрасывается.
func (s *Scraper) Scrape(ctx context.Context, url string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Sprintf("Unable to fetch %s: %v", url, err)
	}
	req.Header.Set("User-Agent", scraperUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Sprintf("Unable to fetch %s: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return fmt.Sprintf("Unable to fetch %s: %v", url, err)
	}

	return truncateRunes(extractVisibleText(string(body)), MaxScrapeChars)
}

// truncateRunes обрезает строку до max символов, не разрывая
// многобайтовые UTF-8 последовательности
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// extractVisibleText обходит поток HTML-токенов и склеивает текстовые
// узлы одиночными пробелами, пропуская невидимые контейнеры.
func extractVisibleText(rawHTML string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))
	var parts []string
	skipDepth := 0

	for {
		tokenType := tokenizer.Next()
		switch tokenType {
		case html.ErrorToken:
			return strings.Join(parts, " ")
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if isHiddenTag(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if isHiddenTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			text := strings.TrimSpace(string(tokenizer.Text()))
			if text != "" {
				parts = append(parts, strings.Join(strings.Fields(text), " "))
			}
		}
	}
}

func isHiddenTag(name string) bool {
	switch name {
	case "script", "style", "noscript":
		return true
	}
	return false
}
