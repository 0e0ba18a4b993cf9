package extract

import (
	"regexp"
	"strings"
)

const (
	// AnswerLabel marks the start of the persona's answer.
	AnswerLabel = "Answer:"
	// TranscriptLabel marks the restated user question.
	TranscriptLabel = "Transcript:"
)

var (
	answerLabelRe     = regexp.MustCompile(`(?i)Answer:`)
	transcriptLabelRe = regexp.MustCompile(`(?i)Transcript:`)
)

// AfterLastAnswer returns the trimmed text after the last "Answer:" marker,
// or the whole trimmed text when there is no marker.
func AfterLastAnswer(text string) string {
	if i := strings.LastIndex(text, AnswerLabel); i >= 0 {
		return strings.TrimSpace(text[i+len(AnswerLabel):])
	}
	return strings.TrimSpace(text)
}

// AfterFirstAnswer returns the trimmed text after the first "Answer:" marker,
// keeping any later markers as part of the answer, or the whole trimmed text
// when there is no marker.
func AfterFirstAnswer(text string) string {
	if _, after, ok := strings.Cut(text, AnswerLabel); ok {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(text)
}

// SplitTranscriptAnswer splits a "Transcript: ... Answer: ..." block at the
// first "Answer:" marker. Labels are stripped case-insensitively from both
// halves. Without an "Answer:" marker both results are empty.
func SplitTranscriptAnswer(text string) (transcript, answer string) {
	i := strings.Index(text, AnswerLabel)
	if i < 0 {
		return "", ""
	}
	return StripLabels(text[:i]), StripLabels(text[i+len(AnswerLabel):])
}

// StripLabels removes the first "Transcript:" and the first "Answer:" label
// (any case) and trims the result.
func StripLabels(s string) string {
	s = replaceFirst(transcriptLabelRe, s)
	s = replaceFirst(answerLabelRe, s)
	return strings.TrimSpace(s)
}

func replaceFirst(re *regexp.Regexp, s string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + s[loc[1]:]
}
