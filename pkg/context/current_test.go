package context

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
)

func TestCurrent_SetGet(t *testing.T) {
	RegisterTestingT(t)

	current := NewCurrent()
	current.Set(RequestIDKey, "abc")
	current.Set("count", 3)

	Expect(current.RequestID()).To(Equal("abc"))

	_, ok := current.GetString("count")
	Expect(ok).To(BeFalse())

	Expect(current.All()).To(HaveLen(2))
}

func TestGetCurrent_FromContext(t *testing.T) {
	RegisterTestingT(t)

	current := NewCurrent()
	current.Set(RequestIDKey, "abc")

	ctx := WithCurrent(context.Background(), current)

	Expect(GetCurrent(ctx)).To(BeIdenticalTo(current))
	Expect(GetCurrent(context.Background()).RequestID()).To(BeEmpty())
}
