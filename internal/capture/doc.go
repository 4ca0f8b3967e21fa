// Package capture implements the auto-capture filter: given an agent
// turn's final output, it gates on noise, segments the text into
// candidate fragments, classifies and scores each for salience, and
// persists the highest-ranked, non-duplicate candidates as new
// memories.
package capture
