package quiz

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"

	commonerrors "github.com/darsapp/backend/internal/common/errors"
	"github.com/darsapp/backend/internal/common/logger"
)

var errInsufficientDistractors = errors.New("not enough distractor candidates in surrounding verses")

// Verse numbers 1 and 2 are skipped so that a previous verse always exists;
// 6236 is the last verse, so stopping at 6234 leaves a following one.
const (
	minVerseNumber = 3
	maxVerseNumber = 6234
)

type Question struct {
	Surah        string   `json:"surah"`
	AyahNumber   int      `json:"ayah_number"`
	Ayah         string   `json:"ayah"`
	AyahTashkeel string   `json:"ayah_tashkeel"`
	Word         string   `json:"word"`
	BeforeWord   string   `json:"before_word"`
	AfterWord    string   `json:"after_word"`
	Choices      []string `json:"choices"`
}

type Service struct {
	verses VerseFetcher
	rng    *rand.Rand
	mu     sync.Mutex
	log    *logger.Logger
}

func NewService(verses VerseFetcher, rng *rand.Rand, log *logger.Logger) *Service {
	return &Service{
		verses: verses,
		rng:    rng,
		log:    log,
	}
}

// NewQuestion builds a masked-word quiz from a random verse. The answer is
// an interior word of the verse; the two distractors come from the
// neighboring verses.
func (s *Service) NewQuestion(ctx context.Context) (Question, error) {
	number := s.randInt(minVerseNumber, maxVerseNumber)

	clean, err := s.verses.FetchVerse(ctx, number, EditionClean)
	if err != nil {
		return Question{}, err
	}
	tashkeel, err := s.verses.FetchVerse(ctx, number, EditionTashkeel)
	if err != nil {
		return Question{}, err
	}

	words := strings.Split(clean.Text, " ")
	if len(words) < 3 {
		s.log.Warnf("quiz verse %d too short for masking: %d words", number, len(words))
		return Question{}, commonerrors.ErrUpstreamUnavailable
	}

	// Pick an interior word, never the first two or last two.
	lo, hi := 2, len(words)-3
	if hi < lo {
		lo, hi = 1, len(words)-2
	}
	wordIndex := s.randInt(lo, hi)
	word := words[wordIndex]

	prev, err := s.verses.FetchVerse(ctx, number-1, EditionClean)
	if err != nil {
		return Question{}, err
	}
	next, err := s.verses.FetchVerse(ctx, number+1, EditionClean)
	if err != nil {
		return Question{}, err
	}

	distractors, err := s.pickDistractors(prev.Text+" "+next.Text, word)
	if err != nil {
		s.log.Warnf("quiz verse %d: %v", number, err)
		return Question{}, commonerrors.ErrUpstreamUnavailable.WithCause(err)
	}

	choices := append([]string{word}, distractors...)
	s.shuffle(choices)

	// The tashkeel text is carried for display; the answer itself is
	// normalized so diacritic variants compare equal.
	return Question{
		Surah:        clean.SurahName,
		AyahNumber:   clean.NumberInSurah,
		Ayah:         clean.Text,
		AyahTashkeel: tashkeel.Text,
		Word:         NormalizeWord(word),
		BeforeWord:   strings.Join(words[:wordIndex], " "),
		AfterWord:    strings.Join(words[wordIndex+1:], " "),
		Choices:      choices,
	}, nil
}

func (s *Service) pickDistractors(surrounding, answer string) ([]string, error) {
	var candidates []string
	for _, w := range strings.Split(surrounding, " ") {
		if len([]rune(w)) > 4 && w != answer {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) < 2 {
		return nil, commonerrors.ErrUpstreamUnavailable.WithCause(
			errInsufficientDistractors)
	}

	s.shuffle(candidates)
	return candidates[:2], nil
}

func (s *Service) randInt(lo, hi int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.Intn(hi-lo+1)
}

func (s *Service) shuffle(items []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
