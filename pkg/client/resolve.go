package client

import (
	"context"

	"github.com/turtacn/cgsmiles/pkg/errors"
	"github.com/turtacn/cgsmiles/pkg/types/molecule"
)

// Resolve resolves notation on the server.
func (c *Client) Resolve(ctx context.Context, notation string) (*molecule.ResolveResponse, error) {
	if notation == "" {
		return nil, errors.InvalidParam("notation is required")
	}
	var out molecule.ResolveResponse
	if err := c.post(ctx, "/api/v1/resolve", molecule.ResolveRequest{Notation: notation}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate parses notation on the server without bonding.
func (c *Client) Validate(ctx context.Context, notation string) (*molecule.ValidateResponse, error) {
	if notation == "" {
		return nil, errors.InvalidParam("notation is required")
	}
	var out molecule.ValidateResponse
	if err := c.post(ctx, "/api/v1/validate", molecule.ValidateRequest{Notation: notation}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Fragments returns the parsed dictionary templates of notation.
func (c *Client) Fragments(ctx context.Context, notation string) ([]molecule.TemplateDTO, error) {
	if notation == "" {
		return nil, errors.InvalidParam("notation is required")
	}
	var out []molecule.TemplateDTO
	if err := c.post(ctx, "/api/v1/fragments", molecule.TemplatesRequest{Notation: notation}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
