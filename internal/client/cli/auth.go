package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/faceauth/internal/client/client"
	"github.com/dmitrijs2005/faceauth/internal/descriptor"
)

// loadDescriptor reads a descriptor file. Both `[0.1, ...]` and
// `"[0.1, ...]"` are accepted.
func loadDescriptor(path string) (descriptor.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		data = []byte(text)
	}

	d, err := descriptor.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func (a *App) ping(ctx context.Context) {
	ctx, cancel := a.callContext(ctx)
	defer cancel()

	if err := a.client.Ping(ctx); err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	fmt.Fprintln(a.out, "OK")
}

func (a *App) register(ctx context.Context, userName, path string) {
	d, err := loadDescriptor(path)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	id, err := a.client.Register(ctx, userName, d)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	fmt.Fprintf(a.out, "Registered %s (id %s)\n", userName, id)
}

func (a *App) login(ctx context.Context, path string) {
	d, err := loadDescriptor(path)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	info, err := a.client.Login(ctx, d)
	if err != nil {
		if errors.Is(err, client.ErrNotRecognized) {
			fmt.Fprintln(a.out, "Face not recognized")
			return
		}
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	a.userName = info.UserName
	fmt.Fprintf(a.out, "Welcome, %s (distance %.4f)\n", info.UserName, info.Distance)
}

func (a *App) whoAmI(ctx context.Context) {
	ctx, cancel := a.callContext(ctx)
	defer cancel()

	name, err := a.client.WhoAmI(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	fmt.Fprintln(a.out, name)
}

func (a *App) logout() {
	a.client.Logout()
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out")
}
