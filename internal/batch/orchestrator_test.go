package batch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northfleet/assetsync/pkg/assets"
	"github.com/northfleet/assetsync/pkg/errors"
)

var testToday = time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

func testClock() time.Time { return testToday }

// fakeClient is an in-memory RegistryClient for orchestrator tests.
type fakeClient struct {
	mu            sync.Mutex
	objects       map[string]*assets.Object
	searchResults []assets.Object // overrides the objects map when set
	updateErrs    map[string]error
	updates       map[string][]assets.ObjectAttribute
	verified      map[string]int
	inFlight      atomic.Int32
	maxFlight     atomic.Int32
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		objects:    make(map[string]*assets.Object),
		updateErrs: make(map[string]error),
		updates:    make(map[string][]assets.ObjectAttribute),
		verified:   make(map[string]int),
	}
}

func (f *fakeClient) SearchObjects(_ context.Context, _ string) ([]assets.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchResults != nil {
		return f.searchResults, nil
	}
	var out []assets.Object
	for _, obj := range f.objects {
		out = append(out, *obj)
	}
	return out, nil
}

func (f *fakeClient) GetObjectFresh(_ context.Context, id string) (*assets.Object, error) {
	cur := f.inFlight.Add(1)
	for {
		max := f.maxFlight.Load()
		if cur <= max || f.maxFlight.CompareAndSwap(max, cur) {
			break
		}
	}
	time.Sleep(time.Millisecond)
	f.inFlight.Add(-1)

	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[id]
	if !ok {
		return nil, nil
	}
	copied := *obj
	return &copied, nil
}

func (f *fakeClient) UpdateObject(_ context.Context, id, _ string, attrs []assets.ObjectAttribute) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.updateErrs[id]; err != nil {
		return err
	}
	f.updates[id] = attrs
	return nil
}

func (f *fakeClient) VerifyUpdate(_ context.Context, id string, _ []assets.ObjectAttribute) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verified[id]++
}

// staleObject is an asset whose derived attributes have never been written.
func staleObject(id string) *assets.Object {
	return &assets.Object{
		ID:         id,
		ObjectType: assets.ObjectType{ID: "23", Name: "Computers"},
		Attributes: []assets.ObjectAttribute{
			{ObjectTypeAttributeID: "236", Values: []assets.AttributeValue{{Value: "Dell 7490"}}},
			{ObjectTypeAttributeID: "234", Values: []assets.AttributeValue{{Value: "SN-" + id}}},
			{ObjectTypeAttributeID: "241", Values: []assets.AttributeValue{{Value: "1000.00"}}},
			{ObjectTypeAttributeID: "238", Values: []assets.AttributeValue{{Value: "2023-11-10"}}},
		},
	}
}

// reconciledObject has all derived attributes already at their computed
// values for testToday (age 19, VAT 1210.00, buyout 359.98).
func reconciledObject(id string) *assets.Object {
	obj := staleObject(id)
	obj.Attributes = append(obj.Attributes,
		assets.ObjectAttribute{ObjectTypeAttributeID: "231", Values: []assets.AttributeValue{{Value: fmt.Sprintf("Dell 7490 - SN-%s, Buyout Price (€359.98)", id)}}},
		assets.ObjectAttribute{ObjectTypeAttributeID: "244", Values: []assets.AttributeValue{{Value: "19"}}},
		assets.ObjectAttribute{ObjectTypeAttributeID: "242", Values: []assets.AttributeValue{{Value: "1210.00"}}},
		assets.ObjectAttribute{ObjectTypeAttributeID: "243", Values: []assets.AttributeValue{{Value: "359.98"}}},
	)
	return obj
}

func testSchema(t *testing.T) *assets.Schema {
	t.Helper()
	schema, err := assets.DefaultSchema()
	require.NoError(t, err)
	return schema
}

func TestRunEmptyPopulation(t *testing.T) {
	client := newFakeClient()
	orch := New(client, testSchema(t), WithClock(testClock))

	summary, err := orch.Run(context.Background(), `objectType = "Computers"`)
	require.NoError(t, err)
	assert.Equal(t, &Summary{}, summary)
}

func TestRunClassifiesOutcomes(t *testing.T) {
	client := newFakeClient()
	client.objects["OBJ-1"] = staleObject("OBJ-1")
	client.objects["OBJ-2"] = reconciledObject("OBJ-2")
	client.objects["OBJ-3"] = staleObject("OBJ-3")
	client.updateErrs["OBJ-3"] = errors.NewAPIError(500, "/object/OBJ-3", "boom")
	client.objects[""] = &assets.Object{ObjectType: assets.ObjectType{ID: "23", Name: "Computers"}}

	orch := New(client, testSchema(t), WithClock(testClock), WithWorkers(2))
	summary, err := orch.Run(context.Background(), `objectType = "Computers"`)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Skipped)

	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "OBJ-3", summary.Errors[0].ObjectID)
	assert.Contains(t, summary.Errors[0].Reason, "boom")

	// The updated asset got its plan written and verified.
	require.Contains(t, client.updates, "OBJ-1")
	assert.Len(t, client.updates["OBJ-1"], 4)
	assert.Equal(t, 1, client.verified["OBJ-1"])

	// The reconciled asset was neither written nor verified.
	assert.NotContains(t, client.updates, "OBJ-2")
	assert.Zero(t, client.verified["OBJ-2"])
}

func TestRunSkipsVanishedObject(t *testing.T) {
	client := newFakeClient()
	client.objects["OBJ-KEEP"] = staleObject("OBJ-KEEP")

	// OBJ-GONE is in the search result but deleted before the fresh read.
	client.searchResults = []assets.Object{*staleObject("OBJ-GONE"), *staleObject("OBJ-KEEP")}

	orch := New(client, testSchema(t), WithClock(testClock))
	summary, err := orch.Run(context.Background(), "aql")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, summary.Failed)
}

func TestRunBoundsConcurrency(t *testing.T) {
	client := newFakeClient()
	for i := 0; i < 40; i++ {
		client.objects[fmt.Sprintf("OBJ-%02d", i)] = staleObject(fmt.Sprintf("OBJ-%02d", i))
	}

	orch := New(client, testSchema(t), WithClock(testClock), WithWorkers(3))
	summary, err := orch.Run(context.Background(), "aql")
	require.NoError(t, err)

	assert.Equal(t, 40, summary.Total)
	assert.Equal(t, 40, summary.Updated)
	assert.LessOrEqual(t, client.maxFlight.Load(), int32(3), "worker pool must bound concurrency")
}

func TestRunCancellationStillSummarizes(t *testing.T) {
	client := newFakeClient()
	for i := 0; i < 30; i++ {
		client.objects[fmt.Sprintf("OBJ-%02d", i)] = staleObject(fmt.Sprintf("OBJ-%02d", i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	orch := New(client, testSchema(t), WithClock(testClock), WithWorkers(2))

	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	summary, err := orch.Run(ctx, "aql")
	require.NoError(t, err)
	assert.Equal(t, 30, summary.Total)
	assert.Equal(t, 30, summary.Updated+summary.Failed+summary.Skipped,
		"every asset must be accounted for even when cancelled")
}
