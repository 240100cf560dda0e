package command

import "strings"

// ParseResult holds the parsed command word and arguments of a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the text after the command with inner spacing preserved.
	RawArgs string
}

// Parse splits a text line into a command and arguments.
//
// Postcondition: Returns a ParseResult. If line is blank, Command is empty.
func Parse(line string) ParseResult {
	word, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	if word == "" {
		return ParseResult{}
	}
	rest = strings.TrimSpace(rest)
	return ParseResult{
		Command: strings.ToLower(word),
		Args:    strings.Fields(rest),
		RawArgs: rest,
	}
}
