// Package cli implements the interactive faceauth command-line client.
//
// Descriptors are read from JSON files holding either an array of numbers or
// a string containing one, the format face-api style extractors export.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/faceauth/internal/client/client"
	"github.com/dmitrijs2005/faceauth/internal/client/config"
	"golang.org/x/term"
)

type App struct {
	config   *config.Config
	client   client.Client
	in       *bufio.Scanner
	out      io.Writer
	prompt   bool
	userName string
}

// NewApp connects to the server configured in c and reads commands from
// stdin.
func NewApp(c *config.Config) (*App, error) {

	apiClient, err := client.NewFaceAuthClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	return newApp(c, apiClient, os.Stdin, os.Stdout, term.IsTerminal(int(os.Stdin.Fd()))), nil
}

func newApp(c *config.Config, cl client.Client, in io.Reader, out io.Writer, prompt bool) *App {
	return &App{
		config: c,
		client: cl,
		in:     bufio.NewScanner(in),
		out:    out,
		prompt: prompt,
	}
}

// Run reads commands until EOF or exit, then closes the connection.
func (a *App) Run(ctx context.Context) {
	defer a.client.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}
