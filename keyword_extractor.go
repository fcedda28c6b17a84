package smartbot

import (
	"bufio"
	"os"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-ego/gse"
)

type Empty struct{}

// keywordExtractor implements the KeywordExtractor interface for deriving
// trigger keywords from example phrases in Chinese, English or mixed text
type keywordExtractor struct {
	seg gse.Segmenter

	chineseStops map[string]Empty
	englishStops map[string]Empty

	latinTokenizer *regexp.Regexp
	mtx            sync.RWMutex
}

// NewKeywordExtractor creates a KeywordExtractor with default stop words
func NewKeywordExtractor() KeywordExtractor {
	extractor := &keywordExtractor{
		chineseStops:   defaultChineseStopWords(),
		englishStops:   defaultEnglishStopWords(),
		latinTokenizer: regexp.MustCompile(`\b\w+\b`),
	}

	// Initialize GSE Segmenter
	_ = extractor.seg.LoadDict()

	return extractor
}

// NewKeywordExtractorWithStopWords creates a KeywordExtractor with extra stop
// words loaded from files and merged over the defaults. Han-script entries
// land in the Chinese set, everything else in the English set
func NewKeywordExtractorWithStopWords(paths ...string) (KeywordExtractor, error) {
	chineseStops := defaultChineseStopWords()
	englishStops := defaultEnglishStopWords()

	for _, path := range paths {
		if path == "" {
			continue
		}

		custom, err := loadStopWordsFromFile(path)
		if err != nil {
			return nil, err
		}

		for word := range custom {
			if containsHan(word) {
				chineseStops[word] = Empty{}
			} else {
				englishStops[strings.ToLower(word)] = Empty{}
			}
		}
	}

	extractor := &keywordExtractor{
		chineseStops:   chineseStops,
		englishStops:   englishStops,
		latinTokenizer: regexp.MustCompile(`\b\w+\b`),
	}

	// Initialize GSE Segmenter
	_ = extractor.seg.LoadDict()

	return extractor, nil
}

// ExtractKeywords segments the phrase and filters stop words, punctuation
// and purely numeric tokens; the result is deduplicated in first-seen order
func (ke *keywordExtractor) ExtractKeywords(phrase string) []string {
	ke.mtx.RLock()
	defer ke.mtx.RUnlock()

	if strings.TrimSpace(phrase) == "" {
		return []string{}
	}

	var tokens []string
	if containsHan(phrase) {
		tokens = ke.segmentMixed(phrase)
	} else {
		tokens = ke.tokenizeLatin(phrase)
	}

	return ke.filterKeywords(tokens)
}

// segmentMixed segments text containing Han characters with GSE; Latin
// fragments inside a segment are re-tokenized and lowercased
func (ke *keywordExtractor) segmentMixed(phrase string) []string {
	segments := ke.seg.Segment([]byte(phrase))
	tokens := make([]string, 0, len(segments))

	for _, segment := range segments {
		token := strings.TrimSpace(segment.Token().Text())
		if token == "" || isPunctuation(token) {
			continue
		}

		if containsHan(token) {
			tokens = append(tokens, token)
			continue
		}

		for _, latin := range ke.latinTokenizer.FindAllString(strings.ToLower(token), -1) {
			if latin != "" {
				tokens = append(tokens, latin)
			}
		}
	}

	return tokens
}

// tokenizeLatin tokenizes Latin-script text with the word regexp
func (ke *keywordExtractor) tokenizeLatin(phrase string) []string {
	return ke.latinTokenizer.FindAllString(strings.ToLower(phrase), -1)
}

// filterKeywords drops stop words and numeric tokens, deduplicating in
// first-seen order
func (ke *keywordExtractor) filterKeywords(tokens []string) []string {
	keywords := make([]string, 0, len(tokens))
	seen := make(map[string]Empty, len(tokens))

	for _, token := range tokens {
		if token == "" || isNumeric(token) {
			continue
		}

		if containsHan(token) {
			if _, stop := ke.chineseStops[token]; stop {
				continue
			}
		} else {
			token = strings.ToLower(token)
			if _, stop := ke.englishStops[token]; stop {
				continue
			}
		}

		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = Empty{}
		keywords = append(keywords, token)
	}

	return keywords
}

// containsHan checks if text contains Han-script characters
func containsHan(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Scripts["Han"], r) {
			return true
		}
	}
	return false
}

// isPunctuation checks if a token is purely punctuation
func isPunctuation(token string) bool {
	for _, r := range token {
		if !unicode.IsPunct(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// isNumeric checks if a token is purely numeric
func isNumeric(token string) bool {
	for _, r := range token {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(token) > 0
}

// defaultChineseStopWords returns a default set of Chinese stop words
func defaultChineseStopWords() map[string]Empty {
	stopWords := []string{
		"的", "了", "在", "是", "我", "有", "和", "就", "不", "人", "都", "一", "一个", "上", "也", "很", "到",
		"说", "要", "去", "会", "着", "看", "好", "自己", "这", "那", "他", "她", "它", "们", "这个", "那个",
		"什么", "怎么", "为什么", "哪里", "哪个", "多少", "可以", "应该", "需要", "想要", "请", "吗", "呢",
	}

	stopWordsMap := make(map[string]Empty)
	for _, word := range stopWords {
		stopWordsMap[word] = Empty{}
	}

	return stopWordsMap
}

// defaultEnglishStopWords returns a default set of English stop words.
// Conversational cue words (greetings, thanks, farewells) are deliberately
// absent so they survive as trigger keywords
func defaultEnglishStopWords() map[string]Empty {
	stopWords := []string{
		"a", "an", "and", "are", "as", "at", "be", "but", "by", "can", "could", "did", "do", "does",
		"for", "from", "had", "has", "have", "he", "her", "him", "his", "how", "i", "if", "in", "into",
		"is", "it", "its", "me", "my", "of", "on", "or", "our", "she", "so", "some", "than", "that",
		"the", "their", "them", "then", "these", "they", "this", "to", "up", "was", "we", "were",
		"what", "when", "where", "which", "who", "whom", "why", "will", "with", "would", "your",
	}

	stopWordsMap := make(map[string]Empty)
	for _, word := range stopWords {
		stopWordsMap[word] = Empty{}
	}

	return stopWordsMap
}

// loadStopWordsFromFile loads stop words from a text file (one word per line)
func loadStopWordsFromFile(path string) (map[string]Empty, error) {
	file, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stopWords := make(map[string]Empty)
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" && !strings.HasPrefix(word, "#") { // Skip empty lines and comments
			stopWords[word] = Empty{}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return stopWords, nil
}
