package agent

import (
	"testing"

	"github.com/hupe1980/agentflow/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockComponent for asserting call order and context propagation.
type MockComponent struct {
	mock.Mock
	name string
}

func NewMockComponent(name string) *MockComponent {
	return &MockComponent{name: name}
}

func (m *MockComponent) Name() string { return m.name }

func (m *MockComponent) Description() string { return "mock component " + m.name }

func (m *MockComponent) Run(rc *core.RunContext) (*core.Content, error) {
	args := m.Called(rc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Content), args.Error(1)
}

// SequentialAgent Test Cases

func TestNewSequentialAgent(t *testing.T) {
	child1 := newTestChildAgent("child1", nil)
	child2 := newTestChildAgent("child2", nil)

	pipeline := NewSequentialAgent("pipeline", child1, child2)

	assert.Equal(t, "pipeline", pipeline.Name())
	assert.Len(t, pipeline.children, 2)
	assert.Same(t, child1, pipeline.children[0])
	assert.Same(t, child2, pipeline.children[1])
}

func TestSequentialAgent_Run_Order(t *testing.T) {
	var order []string
	mkChild := func(name string) *testChildAgent {
		return newTestChildAgent(name, func(_ *core.RunContext) (*core.Content, error) {
			order = append(order, name)
			return core.NewAssistantContent(name + " result"), nil
		})
	}

	pipeline := NewSequentialAgent("pipeline", mkChild("first"), mkChild("second"), mkChild("third"))
	rc := makeRunContext(t, "go")

	content, err := pipeline.Run(rc)
	assert.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, order)

	// The last child's result is the pipeline's result.
	assert.Equal(t, "third result", content.Text())
}

func TestSequentialAgent_Run_StateVisibility(t *testing.T) {
	producer := newTestChildAgent("producer", func(rc *core.RunContext) (*core.Content, error) {
		rc.SetState("outline", "intro, body, outro")
		return core.NewAssistantContent("outlined"), nil
	})

	var seen any
	consumer := newTestChildAgent("consumer", func(rc *core.RunContext) (*core.Content, error) {
		seen, _ = rc.GetState("outline")
		return core.NewAssistantContent("written"), nil
	})

	pipeline := NewSequentialAgent("pipeline", producer, consumer)
	rc := makeRunContext(t, "go")

	_, err := pipeline.Run(rc)
	assert.NoError(t, err)
	assert.Equal(t, "intro, body, outro", seen)
}

func TestSequentialAgent_Run_FirstChildError(t *testing.T) {
	child1 := NewMockComponent("child1")
	child2 := NewMockComponent("child2")

	pipeline := NewSequentialAgent("pipeline", child1, child2)
	rc := makeRunContext(t, "go")

	expectedErr := assert.AnError
	child1.On("Run", rc).Return(nil, expectedErr)

	_, err := pipeline.Run(rc)
	assert.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.ErrorContains(t, err, "pipeline")

	child1.AssertExpectations(t)
	child2.AssertNotCalled(t, "Run", mock.Anything)
}

func TestSequentialAgent_Run_NoChildren(t *testing.T) {
	pipeline := NewSequentialAgent("pipeline")
	rc := makeRunContext(t, "go")

	content, err := pipeline.Run(rc)
	assert.NoError(t, err)
	assert.Equal(t, "", content.Text())
}

func TestSequentialAgent_ContextPropagation(t *testing.T) {
	child1 := NewMockComponent("child1")
	child2 := NewMockComponent("child2")

	pipeline := NewSequentialAgent("pipeline", child1, child2)
	rc := makeRunContext(t, "go")

	// Children share the caller's context, not copies.
	child1.On("Run", mock.MatchedBy(func(got *core.RunContext) bool {
		return got == rc
	})).Return(core.NewAssistantContent("one"), nil)

	child2.On("Run", mock.MatchedBy(func(got *core.RunContext) bool {
		return got == rc
	})).Return(core.NewAssistantContent("two"), nil)

	_, err := pipeline.Run(rc)
	assert.NoError(t, err)

	child1.AssertExpectations(t)
	child2.AssertExpectations(t)
}
