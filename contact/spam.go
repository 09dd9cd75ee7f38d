package contact

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"folio/models"
)

// Signal names one heuristic that fired.
type Signal string

const (
	SignalKeyword  Signal = "keyword"
	SignalLinks    Signal = "links"
	SignalCaps     Signal = "caps"
	SignalRepeated Signal = "repeated_chars"
)

var defaultSpamKeywords = []string{
	"buy now", "click here", "limited time", "act fast", "guaranteed",
	"make money", "work from home", "free money", "get rich",
	"viagra", "casino", "lottery", "winner", "congratulations",
}

var linkPattern = regexp.MustCompile(`https?://`)

// SpamConfig tunes the heuristic. Zero values fall back to the defaults.
type SpamConfig struct {
	Keywords      []string
	MaxLinks      int
	MaxCapsLength int
	CapsRatio     float64
	MaxRepeatRun  int
}

func DefaultSpamConfig() SpamConfig {
	return SpamConfig{
		Keywords:      defaultSpamKeywords,
		MaxLinks:      3,
		MaxCapsLength: 50,
		CapsRatio:     0.3,
		MaxRepeatRun:  5,
	}
}

// Verdict is the outcome of Detect.
type Verdict struct {
	Spam    bool
	Signals []Signal
}

// Detector is a deterministic rule-based spam classifier. It is pure and
// safe for concurrent use.
type Detector struct {
	cfg SpamConfig
}

func NewDetector(cfg SpamConfig) *Detector {
	def := DefaultSpamConfig()
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = def.Keywords
	}
	if cfg.MaxLinks <= 0 {
		cfg.MaxLinks = def.MaxLinks
	}
	if cfg.MaxCapsLength <= 0 {
		cfg.MaxCapsLength = def.MaxCapsLength
	}
	if cfg.CapsRatio <= 0 {
		cfg.CapsRatio = def.CapsRatio
	}
	if cfg.MaxRepeatRun <= 1 {
		cfg.MaxRepeatRun = def.MaxRepeatRun
	}

	keywords := make([]string, len(cfg.Keywords))
	for i, k := range cfg.Keywords {
		keywords[i] = strings.ToLower(k)
	}
	cfg.Keywords = keywords

	return &Detector{cfg: cfg}
}

// Detect screens name, subject and message. Links and capitals are counted
// in the message only; keywords and repeated runs over all three.
func (d *Detector) Detect(m *models.ContactMessage) Verdict {
	var v Verdict
	content := strings.ToLower(m.Message + " " + m.Subject + " " + m.Name)

	if d.hasKeyword(content) {
		v.Signals = append(v.Signals, SignalKeyword)
	}
	if len(linkPattern.FindAllStringIndex(m.Message, -1)) > d.cfg.MaxLinks {
		v.Signals = append(v.Signals, SignalLinks)
	}
	if d.excessiveCaps(m.Message) {
		v.Signals = append(v.Signals, SignalCaps)
	}
	if longestRun(content) >= d.cfg.MaxRepeatRun {
		v.Signals = append(v.Signals, SignalRepeated)
	}

	v.Spam = len(v.Signals) > 0
	return v
}

func (d *Detector) hasKeyword(content string) bool {
	for _, k := range d.cfg.Keywords {
		if strings.Contains(content, k) {
			return true
		}
	}
	return false
}

// excessiveCaps requires both the absolute and the relative threshold.
func (d *Detector) excessiveCaps(message string) bool {
	caps := 0
	for _, r := range message {
		if r >= 'A' && r <= 'Z' {
			caps++
		}
	}
	total := utf8.RuneCountInString(message)
	return caps > d.cfg.MaxCapsLength && float64(caps) > float64(total)*d.cfg.CapsRatio
}

// longestRun returns the longest run of one repeated rune. Newlines break runs.
func longestRun(s string) int {
	longest, run := 0, 0
	var prev rune = -1
	for _, r := range s {
		if r == '\n' {
			prev, run = -1, 0
			continue
		}
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
