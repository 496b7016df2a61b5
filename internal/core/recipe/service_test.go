package recipe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-finder/internal/core/provider"
	"recipe-finder/internal/pkg/common"
)

func TestServiceSearchNormalizesTokens(t *testing.T) {
	source := newFakeSource()
	source.byIngredient["chicken"] = candidateRefs("1")
	source.addMeal("1", "Roast Chicken", "Roast.", "Chicken")

	recipes, err := newTestService(source).Search(context.Background(), []string{" Chicken ", "", "CHICKEN"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, recipeIDs(recipes))
	assert.Equal(t, []string{"chicken"}, source.ingredientCalls)
}

func TestServiceSearchAppliesQuery(t *testing.T) {
	source := newFakeSource()
	source.byIngredient["egg"] = candidateRefs("1", "2")
	source.addMeal("1", "Omelette", "Whisk.", "Egg", "Cheese")
	source.addMeal("2", "Shakshuka", "Simmer.", "Egg", "Tomato")

	recipes, err := newTestService(source).Search(context.Background(), []string{"egg"}, "tomato")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, recipeIDs(recipes))
}

func TestServiceSearchBlankTokensUseDefault(t *testing.T) {
	source := newFakeSource()
	seedCategories(source, 1)
	svc := newTestService(source)

	recipes, err := svc.Search(context.Background(), []string{" ", ""}, "")
	require.NoError(t, err)
	assert.Len(t, recipes, 7)
	assert.Empty(t, source.ingredientCalls)

	filtered, err := svc.Default(context.Background(), "lamb")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lamb-0"}, recipeIDs(filtered))
}

func TestServiceLookup(t *testing.T) {
	source := newFakeSource()
	source.addMeal("52772", "Teriyaki Chicken", "Bake.", "soy sauce")
	source.records["broken"] = provider.RawRecord{"idMeal": "broken"}
	source.detailErr["down"] = provider.Unavailable("lookup", errors.New("refused"))
	svc := newTestService(source)
	ctx := context.Background()

	recipe, err := svc.Lookup(ctx, " 52772 ")
	require.NoError(t, err)
	assert.Equal(t, "Teriyaki Chicken", recipe.Title)

	_, err = svc.Lookup(ctx, "404")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = svc.Lookup(ctx, "broken")
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = svc.Lookup(ctx, "down")
	assert.True(t, IsSearchError(err))
	assert.ErrorIs(t, err, provider.ErrSourceUnavailable)

	_, err = svc.Lookup(ctx, "  ")
	assert.True(t, common.IsValidationError(err))
}

func TestServiceSuggestedIngredients(t *testing.T) {
	svc := newTestService(newFakeSource())

	suggested := svc.SuggestedIngredients()
	assert.Len(t, suggested, 16)
	for _, name := range suggested {
		assert.Equal(t, name, svc.Normalize(name))
	}
}

func TestServiceCustomTables(t *testing.T) {
	source := newFakeSource()
	source.byIngredient["tomato"] = candidateRefs("1")
	source.addMeal("1", "Salad", "Toss.", "Tomato")
	source.records["1"]["strCategory"] = "Starter"

	svc := NewServiceWithTables(source, testSearchConfig(),
		map[string]string{"tomate": "tomato"},
		map[string]string{"Starter": "Entrée"},
	)

	recipes, err := svc.Search(context.Background(), []string{"Tomate"}, "")
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Entrée", recipes[0].Category)
}

func TestSessionDeliversOnlyLatest(t *testing.T) {
	source := newFakeSource()
	gate := make(chan struct{})
	source.gates["slow"] = gate
	source.byIngredient["slow"] = candidateRefs("s")
	source.addMeal("s", "Slow dish", "Wait.", "Slow")
	source.byIngredient["fast"] = candidateRefs("f")
	source.addMeal("f", "Fast dish", "Go.", "Fast")

	session := newTestService(source).NewSession()
	ctx := context.Background()

	first := session.Submit(ctx, []string{"slow"}, "")
	second := session.Submit(ctx, []string{"fast"}, "")
	assert.Equal(t, uint64(1), first)
	assert.Equal(t, uint64(2), second)
	assert.Equal(t, second, session.Latest())

	select {
	case d := <-session.Results():
		assert.Equal(t, second, d.RequestID)
		require.NoError(t, d.Err)
		assert.Equal(t, []string{"f"}, recipeIDs(d.Recipes))
	case <-time.After(2 * time.Second):
		t.Fatal("latest search was not delivered")
	}

	close(gate)
	session.Wait()

	select {
	case d := <-session.Results():
		t.Fatalf("superseded search %d was delivered", d.RequestID)
	default:
	}
}

func TestSessionReplacesUnreadDelivery(t *testing.T) {
	source := newFakeSource()
	source.byIngredient["egg"] = candidateRefs("1")
	source.addMeal("1", "Omelette", "Whisk.", "Egg")

	session := newTestService(source).NewSession()
	ctx := context.Background()

	session.Submit(ctx, []string{"egg"}, "")
	session.Wait()
	latest := session.Submit(ctx, []string{"egg"}, "omelette")
	session.Wait()

	d := <-session.Results()
	assert.Equal(t, latest, d.RequestID)

	select {
	case extra := <-session.Results():
		t.Fatalf("unexpected extra delivery %d", extra.RequestID)
	default:
	}
}

func TestSessionDeliversErrors(t *testing.T) {
	source := newFakeSource()
	source.ingredientErr["egg"] = provider.Unavailable("filter.ingredient", errors.New("down"))

	session := newTestService(source).NewSession()
	id := session.Submit(context.Background(), []string{"egg"}, "")
	session.Wait()

	d := <-session.Results()
	assert.Equal(t, id, d.RequestID)
	assert.True(t, IsSearchError(d.Err))
	assert.Nil(t, d.Recipes)
}
