package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"loan-assistant/domain"
)

// Extractor turns one free-text message into structured facts and an
// intent. The gate tells it what the conversation is waiting for.
type Extractor interface {
	Extract(ctx context.Context, text string, gate domain.Gate) (domain.Turn, error)
}

var (
	phonePattern      = regexp.MustCompile(`(\+?91[\s-]*|0)?[6-9](?:[\s-]?\d){9}`)
	compoundPattern   = regexp.MustCompile(`(\d+)\s*(?:lakhs?|lacs?|l)\s*(\d+)\s*(?:thousand|k)\b`)
	unitPattern       = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(crores?|cr|lakhs?|lacs?|l|thousands?|k)\b`)
	wordAmountPattern = regexp.MustCompile(`\b(one|two|three|four|five|six|seven|eight|nine|ten|fifty|dedh|dhai)\s+(crores?|lakhs?|thousand)\b`)
	currencyPattern   = regexp.MustCompile(`(?:inr|rs\.?|₹)\s*(\d+(?:\.\d+)?)`)
	plainPattern      = regexp.MustCompile(`\b(\d{5,})\b`)
	phoneLikePattern  = regexp.MustCompile(`\+?\d(?:[\s-]?\d){8,11}`)
	salaryPattern     = regexp.MustCompile(`\b(salary|income|earn\w*|ctc|take[\s-]?home)\b`)
	humanPattern      = regexp.MustCompile(`\b(?:(?:talk|speak|chat)\s+(?:to|with)|connect\s+me\s+(?:to|with)|transfer\s+me\s+to|(?:want|need)\s+(?:to\s+talk\s+to\s+)?)\s*(?:a|an|the|your|some)?\s*(?:real\s+)?(?:human|agent|person|executive|representative|someone)\b|\breal\s+(?:person|human)\b|\bcustomer\s+(?:care|support|service)\b`)
	monthsPattern     = regexp.MustCompile(`\b(\d+)\s*(?:months?|mo|m)\b`)
	yearsPattern      = regexp.MustCompile(`\b(\d+)\s*(?:years?|yrs?|y)\b`)
	confirmPattern    = regexp.MustCompile(`\b(yes|yeah|yep|ok|okay|proceed|agree|agreed|sure|confirm|accept|go ahead|haan|done)\b`)
	refusePattern     = regexp.MustCompile(`\b(no|nope|cancel|refuse|stop|don't|dont|not interested|nahi)\b`)
	optionPatterns    = [3]*regexp.Regexp{
		regexp.MustCompile(`\b(1|one|first|fast)\b`),
		regexp.MustCompile(`\b(2|two|second|balanced|recommended)\b`),
		regexp.MustCompile(`\b(3|three|third|extended)\b`),
	}
)

var unitMultipliers = map[string]int64{
	"crore": 10_000_000, "crores": 10_000_000, "cr": 10_000_000,
	"lakh": 100_000, "lakhs": 100_000, "lac": 100_000, "lacs": 100_000, "l": 100_000,
	"thousand": 1_000, "thousands": 1_000, "k": 1_000,
}

var wordNumbers = map[string]string{
	"one": "1", "two": "2", "three": "3", "four": "4", "five": "5",
	"six": "6", "seven": "7", "eight": "8", "nine": "9", "ten": "10",
	"fifty": "50", "dedh": "1.5", "dhai": "2.5",
}

var purposeKeywords = []struct {
	label    string
	keywords []string
}{
	{"wedding", []string{"wedding", "shaadi", "marriage", "vivah", "bride", "groom"}},
	{"education", []string{"education", "college", "university", "course", "degree", "studies", "fees", "school", "tuition"}},
	{"medical", []string{"medical", "hospital", "health", "surgery", "treatment", "doctor", "medicine", "operation"}},
	{"home renovation", []string{"renovation", "home improvement", "repair", "construction", "interior", "remodel", "furnish"}},
	{"travel", []string{"travel", "trip", "vacation", "holiday", "tour", "abroad"}},
	{"business", []string{"business", "startup", "shop", "store", "enterprise", "venture"}},
	{"vehicle", []string{"car", "bike", "vehicle", "scooter", "two-wheeler", "four-wheeler"}},
	{"personal", []string{"personal", "emergency", "expenses"}},
}

var (
	frustrationKeywords = []string{"frustrat", "useless", "waste of time", "annoying", "ridiculous", "fed up", "pathetic"}

	// Push-back needs a challenge word and a topic signal; pure
	// acceptances are never negotiation.
	challengeWords = []string{"why", "how", "can", "could", "please", "need", "want", "reduce", "lower", "not", "don't", "too", "is it", "what", "better", "less", "more", "high", "much"}
	emiSignals     = []string{"emi", "monthly", "installment", "instalment", "per month", "afford", "burden", "too much", "smaller payment", "longer period", "extend"}
	rateSignals    = []string{"rate", "interest", "percent", "too high", "expensive", "costly", "discount", "better deal", "other bank", "competitor", "market rate"}
	amountSignals  = []string{"more money", "need more", "want more", "full amount", "not enough", "increase", "higher amount", "give more", "why limit", "too low", "entire amount", "whole amount", "reconsider"}

	nameStopWords = map[string]bool{
		"i": true, "am": true, "im": true, "my": true, "name": true, "is": true, "its": true, "this": true,
		"need": true, "a": true, "an": true, "loan": true, "of": true, "for": true, "lakhs": true, "lakh": true,
		"rs": true, "rupees": true, "k": true, "want": true, "get": true, "hi": true, "hello": true, "hey": true,
		"the": true, "please": true, "help": true, "apply": true, "call": true, "me": true, "here": true,
		"myself": true, "and": true, "from": true, "speaking": true, "ive": true, "id": true,
	}
)

// RuleExtractor is the deterministic keyword and pattern extractor. It
// needs the presented tenures to map "first", "2" or "balanced" onto a
// plan.
type RuleExtractor struct {
	tenures [3]int
}

func NewRuleExtractor(tenures [3]int) *RuleExtractor {
	return &RuleExtractor{tenures: tenures}
}

func (e *RuleExtractor) Extract(_ context.Context, text string, gate domain.Gate) (domain.Turn, error) {
	msg := strings.ToLower(strings.TrimSpace(text))
	var turn domain.Turn

	phone, rest := extractPhone(msg)
	turn.Facts.Phone = phone

	// Digits that failed as a phone number at PHONE_VERIFY are a mistyped
	// number, not a loan amount.
	amountText := strings.ReplaceAll(rest, ",", "")
	if gate == domain.GatePhoneVerify {
		amountText = phoneLikePattern.ReplaceAllString(amountText, " ")
	}

	salary, amountText := extractSalary(amountText)
	turn.Facts.Salary = salary
	if amount, _, ok := findAmount(amountText); ok {
		turn.Facts.Amount = decimal.NewNullDecimal(amount)
	}

	switch gate {
	case domain.GateCollectName:
		turn.Facts.Name = extractName(text)
	case domain.GateCollectPurpose:
		turn.Facts.Purpose = extractPurpose(rest)
	}

	turn.Intent = e.intent(rest, gate)
	return turn, nil
}

func (e *RuleExtractor) intent(msg string, gate domain.Gate) domain.Intent {
	switch {
	case humanPattern.MatchString(msg):
		return domain.HumanRequest()
	case containsAny(msg, frustrationKeywords):
		return domain.Frustration()
	}

	// At agreement a plain "yes, 36 months is fine" is a confirmation.
	if gate == domain.GateSelectOption || gate == domain.GateVerbalAgreement && !confirmPattern.MatchString(msg) {
		if months := e.tenure(msg); months > 0 {
			return domain.SelectTenure(months)
		}
	}

	if gate.ProfileResolved() || gate == domain.GatePhoneVerify {
		if topic, ok := negotiationTopic(msg); ok {
			return domain.Negotiate(topic)
		}
	}

	confirm := confirmPattern.MatchString(msg)
	refuse := refusePattern.MatchString(msg)
	switch {
	case confirm && !refuse:
		return domain.Confirm()
	case refuse && !confirm:
		return domain.Refuse()
	}
	return domain.NoIntent()
}

// tenure reads an explicit duration ("60 months", "5 years") or an option
// word ("first", "2", "balanced").
func (e *RuleExtractor) tenure(msg string) int {
	if m := monthsPattern.FindStringSubmatch(msg); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if m := yearsPattern.FindStringSubmatch(msg); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n * 12
	}
	for i, p := range optionPatterns {
		if p.MatchString(msg) {
			return e.tenures[i]
		}
	}
	return 0
}

func negotiationTopic(msg string) (domain.NegotiationTopic, bool) {
	if len(msg) <= 3 || confirmPattern.FindString(msg) == msg {
		return "", false
	}
	if !containsAny(msg, challengeWords) {
		return "", false
	}
	switch {
	case containsAny(msg, emiSignals):
		return domain.TopicEMI, true
	case containsAny(msg, rateSignals):
		return domain.TopicRate, true
	case containsAny(msg, amountSignals):
		return domain.TopicAmount, true
	}
	return "", false
}

// extractPhone returns the first Indian mobile number in msg, normalized,
// and msg with that number blanked out so it is not read as an amount.
func extractPhone(msg string) (string, string) {
	for _, loc := range phonePattern.FindAllStringIndex(msg, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && isDigit(msg[start-1]) || end < len(msg) && isDigit(msg[end]) {
			continue
		}
		phone := domain.NormalizePhone(msg[start:end])
		if !domain.ValidMobile(phone) {
			continue
		}
		return phone, msg[:start] + " " + msg[end:]
	}
	return "", msg
}

// extractSalary reads the amount next to a salary keyword, preferring
// the one after it ("salary is 50k") over one before it ("50k salary").
// It returns msg with the keyword and that amount blanked out.
func extractSalary(msg string) (decimal.NullDecimal, string) {
	loc := salaryPattern.FindStringIndex(msg)
	if loc == nil {
		return decimal.NullDecimal{}, msg
	}
	before, after := msg[:loc[0]], msg[loc[1]:]

	if salary, span, ok := findAmount(after); ok {
		return decimal.NewNullDecimal(salary), before + " " + after[:span[0]] + " " + after[span[1]:]
	}
	if salary, span, ok := findAmount(before); ok {
		return decimal.NewNullDecimal(salary), before[:span[0]] + " " + before[span[1]:] + " " + after
	}
	return decimal.NullDecimal{}, before + " " + after
}

// findAmount understands "1 lakh 50 thousand", "5l", "2.5 crore",
// "dedh lakh", "inr 500000" and bare numbers of five or more digits.
// Commas must already be removed. span is the matched byte range.
func findAmount(msg string) (decimal.Decimal, []int, bool) {
	if m := compoundPattern.FindStringSubmatchIndex(msg); m != nil {
		lakhs, _ := decimal.NewFromString(msg[m[2]:m[3]])
		thousands, _ := decimal.NewFromString(msg[m[4]:m[5]])
		return lakhs.Mul(decimal.NewFromInt(100_000)).Add(thousands.Mul(decimal.NewFromInt(1_000))), m[:2], true
	}
	if m := unitPattern.FindStringSubmatchIndex(msg); m != nil {
		if n, err := decimal.NewFromString(msg[m[2]:m[3]]); err == nil {
			return n.Mul(decimal.NewFromInt(unitMultipliers[msg[m[4]:m[5]]])), m[:2], true
		}
	}
	if m := wordAmountPattern.FindStringSubmatchIndex(msg); m != nil {
		n, _ := decimal.NewFromString(wordNumbers[msg[m[2]:m[3]]])
		return n.Mul(decimal.NewFromInt(unitMultipliers[msg[m[4]:m[5]]])), m[:2], true
	}
	if m := currencyPattern.FindStringSubmatchIndex(msg); m != nil {
		if n, err := decimal.NewFromString(msg[m[2]:m[3]]); err == nil && n.IsPositive() {
			return n, m[:2], true
		}
	}
	if m := plainPattern.FindStringSubmatchIndex(msg); m != nil {
		if n, err := decimal.NewFromString(msg[m[2]:m[3]]); err == nil {
			return n, m[:2], true
		}
	}
	return decimal.Zero, nil, false
}

// extractName takes up to two words after any greeting or lead-in. The
// name ends at the first stop word or punctuation after it.
func extractName(text string) string {
	var words []string
	for _, raw := range strings.Fields(strings.ReplaceAll(text, "’", "'")) {
		w := strings.TrimFunc(raw, func(r rune) bool { return !unicode.IsLetter(r) })
		key := strings.ReplaceAll(strings.ToLower(w), "'", "")
		if w == "" || nameStopWords[key] || strings.IndexFunc(w, unicode.IsDigit) >= 0 {
			if len(words) > 0 {
				break
			}
			continue
		}
		words = append(words, titleCase(strings.ToLower(w)))
		if len(words) == 2 || strings.ContainsAny(raw[len(raw)-1:], ",.!?;") {
			break
		}
	}
	return strings.Join(words, " ")
}

func extractPurpose(msg string) string {
	for _, p := range purposeKeywords {
		if containsAny(msg, p.keywords) {
			return p.label
		}
	}

	var words []string
	for _, w := range strings.Fields(msg) {
		w = strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) })
		if w == "" || nameStopWords[w] || strings.IndexFunc(w, unicode.IsDigit) >= 0 {
			continue
		}
		words = append(words, w)
	}
	return strings.Join(words, " ")
}

func titleCase(w string) string {
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func containsAny(msg string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(msg, k) {
			return true
		}
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
