package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/california-civic-data/calaccess-processed/internal/model"
)

func TestSuggestMerges(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()

	near := &model.Person{Name: "JOHN SMITH", SortName: "SMITH, JOHN"}
	require.NoError(t, st.CreatePerson(ctx, near))
	variant := &model.Person{Name: "JON SMITH", SortName: "SMITH, JON"}
	require.NoError(t, st.CreatePerson(ctx, variant))
	far := &model.Person{Name: "MARIE WALDRON", SortName: "WALDRON, MARIE"}
	require.NoError(t, st.CreatePerson(ctx, far))

	suggestions, err := r.SuggestMerges(ctx)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	require.Equal(t, "SMITH, JOHN", suggestions[0].PersonName)
	require.Equal(t, "SMITH, JON", suggestions[0].CandidateName)
	require.GreaterOrEqual(t, suggestions[0].Similarity, 0.9)
}

func TestSuggestMergesSkipsDistinctFilerIDs(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()

	a := &model.Person{Name: "JOHN SMITH", SortName: "SMITH, JOHN"}
	a.AddIdentifier(model.SchemeCalaccessFilerID, "1000001")
	require.NoError(t, st.CreatePerson(ctx, a))
	b := &model.Person{Name: "JON SMITH", SortName: "SMITH, JON"}
	b.AddIdentifier(model.SchemeCalaccessFilerID, "1000002")
	require.NoError(t, st.CreatePerson(ctx, b))

	suggestions, err := r.SuggestMerges(ctx)
	require.NoError(t, err)
	require.Empty(t, suggestions)
}
