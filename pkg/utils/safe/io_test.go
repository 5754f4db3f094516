package safe_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/unihelpdesk/helpdesk/pkg/utils/safe"
)

type closer struct {
	called bool
	err    error
}

func (c *closer) Close() error {
	c.called = true
	return c.err
}

func TestClose(t *testing.T) {
	c := &closer{err: errors.New("already closed")}
	safe.Close(context.Background(), c)
	gt.Bool(t, c.called).True()

	safe.Close(context.Background(), nil)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	safe.Write(context.Background(), &buf, []byte("ok"))
	gt.Value(t, buf.String()).Equal("ok")

	safe.Write(context.Background(), nil, []byte("ignored"))
}
