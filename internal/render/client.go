package render

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/focus-companion/internal/animation"
)

// PlayMethod is the renderer RPC that accepts a command batch.
const PlayMethod = "/companion.v1.Renderer/Play"

// #region invoker
// Invoker is the slice of *grpc.ClientConn the client needs. Tests inject fakes.
type Invoker interface {
	Invoke(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error
}
// #endregion invoker

// #region client-struct
// Client sends animation commands to the external renderer over gRPC.
type Client struct {
	conn *grpc.ClientConn
	inv  Invoker
}
// #endregion client-struct

// #region constructor
// NewClient connects to the renderer at addr.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, inv: conn}, nil
}

// NewClientWithInvoker creates a Client over an injected invoker.
// Used for testing without a real gRPC connection.
func NewClientWithInvoker(inv Invoker) *Client {
	return &Client{inv: inv}
}
// #endregion constructor

// #region close
// Close shuts down the gRPC connection, if the client owns one.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
// #endregion close

// #region play
// Play sends cmds as one batch and returns how many the renderer accepted.
func (c *Client) Play(ctx context.Context, cmds []animation.Command) (int, error) {
	req, err := Encode(cmds)
	if err != nil {
		return 0, err
	}
	reply := &structpb.Struct{}
	if err := c.inv.Invoke(ctx, PlayMethod, req, reply); err != nil {
		return 0, fmt.Errorf("play: %w", err)
	}
	accepted := len(cmds)
	if v, ok := reply.GetFields()["accepted"]; ok {
		accepted = int(v.GetNumberValue())
	}
	return accepted, nil
}
// #endregion play

// #region encode
// Encode converts a command batch into the renderer's wire payload.
func Encode(cmds []animation.Command) (*structpb.Struct, error) {
	list := make([]any, 0, len(cmds))
	for _, c := range cmds {
		m := map[string]any{
			"id":            c.ID,
			"type":          string(c.Type),
			"name":          c.Name,
			"duration_ms":   float64(c.Duration.Milliseconds()),
			"loop":          c.Loop,
			"priority":      c.Priority.String(),
			"interruptible": c.Interruptible,
		}
		if c.Glow != nil {
			m["glow"] = map[string]any{"color": c.Glow.Color, "intensity": c.Glow.Intensity}
		}
		if c.Particles != nil {
			m["particles"] = map[string]any{"kind": c.Particles.Kind, "count": float64(c.Particles.Count)}
		}
		if c.Sound != "" {
			m["sound"] = c.Sound
		}
		list = append(list, m)
	}
	s, err := structpb.NewStruct(map[string]any{"commands": list})
	if err != nil {
		return nil, fmt.Errorf("encode commands: %w", err)
	}
	return s, nil
}
// #endregion encode
