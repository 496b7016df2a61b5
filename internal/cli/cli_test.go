package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"
)

func fakeSource(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case r.URL.Path == "/filter.php" && q.Get("i") == "chicken":
			w.Write([]byte(`{"meals":[{"idMeal":"1"},{"idMeal":"2"}]}`))
		case r.URL.Path == "/filter.php" && q.Get("c") == "Dessert":
			w.Write([]byte(`{"meals":[{"idMeal":"3"}]}`))
		case r.URL.Path == "/filter.php":
			w.Write([]byte(`{"meals":null}`))
		case r.URL.Path == "/lookup.php" && q.Get("i") == "1":
			w.Write([]byte(`{"meals":[{"idMeal":"1","strMeal":"Chicken & Carrot Pie","strCategory":"Chicken","strInstructions":"Bake.","strIngredient1":"Chicken","strMeasure1":"500g","strIngredient2":"Carrots","strMeasure2":"2"}]}`))
		case r.URL.Path == "/lookup.php" && q.Get("i") == "2":
			w.Write([]byte(`{"meals":[{"idMeal":"2","strMeal":"Roast Chicken","strCategory":"Chicken","strInstructions":"Season. Roast.","strIngredient1":"Chicken","strMeasure1":"1 whole"}]}`))
		case r.URL.Path == "/lookup.php" && q.Get("i") == "3":
			w.Write([]byte(`{"meals":[{"idMeal":"3","strMeal":"Pudding","strCategory":"Dessert","strInstructions":"Chill.","strIngredient1":"Milk","strMeasure1":"1 cup"}]}`))
		default:
			w.Write([]byte(`{"meals":null}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	srv := fakeSource(t)

	var out bytes.Buffer
	cmd := NewCommand(nil)
	cmd.Writer = &out

	err := cmd.Run(context.Background(), append([]string{name, "--base-url", srv.URL}, args...))
	return out.String(), err
}

func TestSearchTable(t *testing.T) {
	out, err := run(t, "search", "Chicken", "carrot")
	require.NoError(t, err)
	assert.Contains(t, out, "Chicken & Carrot Pie")
	assert.NotContains(t, out, "Roast Chicken")
	assert.Contains(t, out, "1 recipe(s)")
}

func TestSearchJSON(t *testing.T) {
	out, err := run(t, "search", "--json", "chicken")
	require.NoError(t, err)

	var resp recipe.SearchResponse
	require.NoError(t, common.ParseJSON(out, &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "1", resp.Recipes[0].ID)
	assert.Equal(t, "2", resp.Recipes[1].ID)
}

func TestSearchQueryFilter(t *testing.T) {
	out, err := run(t, "search", "--query", "roast", "chicken")
	require.NoError(t, err)
	assert.Contains(t, out, "Roast Chicken")
	assert.NotContains(t, out, "Carrot Pie")
}

func TestSearchNoMatches(t *testing.T) {
	out, err := run(t, "search", "unobtainium")
	require.NoError(t, err)
	assert.Contains(t, out, "No matching recipes.")
}

func TestDefault(t *testing.T) {
	out, err := run(t, "default")
	require.NoError(t, err)
	assert.Contains(t, out, "Pudding")
	assert.Contains(t, out, "1 recipe(s)")
}

func TestShow(t *testing.T) {
	out, err := run(t, "show", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Roast Chicken (Chicken)")
	assert.Contains(t, out, "1. Season")
	assert.Contains(t, out, "2. Roast")

	_, err = run(t, "show")
	assert.Error(t, err)

	_, err = run(t, "show", "404")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestIngredients(t *testing.T) {
	out, err := run(t, "ingredients")
	require.NoError(t, err)
	assert.Contains(t, out, "zucchini\n")
}
