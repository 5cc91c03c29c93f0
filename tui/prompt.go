package tui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"obsmacros/models"
)

// PromptCredentials asks for host, port and password on a plain line
// terminal, before the screen is taken over. The port is asked again
// until it parses. readPassword reads the password without echo.
// Callers that prompt more than once must pass the same reader, since
// it may already hold buffered lines.
func PromptCredentials(r *bufio.Reader, out io.Writer, readPassword func() (string, error)) (models.Credentials, error) {
	creds := models.DefaultCredentials()

	fmt.Fprintln(out, "Host:")
	host, err := readLine(r)
	if err != nil {
		return creds, err
	}
	if host != "" {
		creds.Host = host
	}

	fmt.Fprintln(out, "Port:")
	for {
		line, err := readLine(r)
		if err != nil {
			return creds, err
		}
		port, perr := strconv.Atoi(line)
		if perr == nil && port > 0 && port <= 65535 {
			creds.Port = port
			break
		}
		fmt.Fprintln(out, "Not a valid number. Try again:")
	}

	fmt.Fprintln(out, "Password:")
	if readPassword == nil {
		readPassword = func() (string, error) { return readLine(r) }
	}
	creds.Password, err = readPassword()
	if err != nil {
		return creds, fmt.Errorf("failed to read password: %w", err)
	}
	return creds, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
