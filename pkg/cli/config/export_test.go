package config

import "time"

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string, dimension int) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
		dimension: dimension,
	}
}

func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

func NewRepositoryForTest(backend, sqlitePath string) *Repository {
	return &Repository{backend: backend, sqlitePath: sqlitePath}
}

func NewSMTPForTest(host, username, from string) *SMTP {
	return &SMTP{host: host, port: 587, username: username, from: from, timeout: time.Second}
}

func NewSlackForTest(botToken, channelID string) *Slack {
	return &Slack{botToken: botToken, channelID: channelID}
}

func NewKnowledgeForTest(source string, bootstrap bool) *Knowledge {
	return &Knowledge{source: source, bootstrap: bootstrap}
}
