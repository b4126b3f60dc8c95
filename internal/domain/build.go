package domain

import "time"

// Build is the recorded outcome of one successful address book build.
type Build struct {
	ID         string         `json:"id" db:"id"`
	Number     int            `json:"number" db:"number"`
	OutputPath string         `json:"outputPath" db:"output_path"`
	Digest     string         `json:"digest" db:"digest"`
	CreatedAt  time.Time      `json:"createdAt" db:"created_at"`
	Networks   []BuildNetwork `json:"networks" db:"-"`
}

// BuildNetwork summarizes one network within a build.
type BuildNetwork struct {
	ChainID  int64    `json:"chainId"`
	Name     string   `json:"name"`
	Sections []string `json:"sections"`
}

// BuildResult is returned by a build run.
type BuildResult struct {
	BuildID    string `json:"buildId,omitempty"`
	Number     int    `json:"number,omitempty"`
	OutputPath string `json:"outputPath"`
	Digest     string `json:"digest"`
	Networks   int    `json:"networks"`
	Sections   int    `json:"sections"`
	Unchanged  bool   `json:"unchanged"`
}
