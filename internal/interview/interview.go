// Package interview gathers the free-text context a decision tree is
// grounded in. The engine itself never asks questions; it only consumes
// the context entries this package (or any other front end) produces.
package interview

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/crossroads-cli/crossroads/internal/tree"
)

// SkipAnswer is what the user types to decline a question. Declined domains
// are stored with the skip sentinel set, so prompts can distinguish
// "declined" from "not asked".
const SkipAnswer = "skip"

var questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))

var questions = map[string]string{
	tree.DomainCareer:       "Where are you professionally right now?",
	tree.DomainPersonalLife: "What does your personal life look like?",
	tree.DomainFinances:     "How are your finances?",
	tree.DomainMentalState:  "How are you feeling about this decision?",
	tree.DomainMetaNotes:    "Anything else worth knowing?",
}

// Collect asks the domain questions in order, reading answers from r and
// writing prompts to w. Type "skip" to decline a question.
func Collect(r io.Reader, w io.Writer) ([]tree.ContextEntry, error) {
	fmt.Fprintln(w, "Answer the following questions to set the context. Type \"skip\" to pass.")

	scanner := bufio.NewScanner(r)
	var entries []tree.ContextEntry

	for _, domain := range tree.Domains() {
		fmt.Fprintf(w, "%s ", questionStyle.Render("? "+questions[domain]))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("interview: read answer: %w", err)
			}
			break
		}

		answer := strings.TrimSpace(scanner.Text())
		entries = append(entries, tree.ContextEntry{
			Domain:  domain,
			Text:    answerText(answer),
			Skipped: strings.EqualFold(answer, SkipAnswer),
		})
	}

	return entries, nil
}

func answerText(answer string) string {
	if strings.EqualFold(answer, SkipAnswer) {
		return ""
	}
	return answer
}

// yearPattern matches a 4-digit year from 1900-2099.
var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// FindYear extracts the first plausible year from a statement, used to
// backfill a decision's timeframe when the user didn't give one.
func FindYear(text string) (int, bool) {
	match := yearPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return year, true
}
