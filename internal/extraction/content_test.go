package extraction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recipePage = `<!DOCTYPE html>
<html><head>
<title>Tarta de manzana | Recetas</title>
<meta property="og:title" content="Tarta de manzana casera">
<meta property="og:image" content="/img/tarta.jpg">
<meta name="description" content="La mejor tarta de manzana">
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"Recipe","name":"Tarta de manzana","recipeIngredient":["3 manzanas","200 g de harina"]}
</script>
<script type="application/ld+json">{"@type":"Organization","name":"Recetas"}</script>
<script>var tracking = true;</script>
</head>
<body>
<nav><a href="/">Inicio</a></nav>
<article>
<h1>Tarta de manzana casera</h1>
<img src="https://cdn.example.com/paso1.jpg">
<h2>Ingredientes</h2>
<ul><li>3 manzanas</li><li>200 g de harina</li><li>100 g de azúcar</li></ul>
<h2>Preparación</h2>
<ol><li>Pelar y cortar las manzanas en láminas finas.</li><li>Mezclar la harina con el azúcar y la mantequilla.</li><li>Hornear 40 minutos a 180 grados hasta dorar.</li></ol>
</article>
<footer>Copyright</footer>
</body></html>`

func TestPrepareDocument(t *testing.T) {
	page, err := PrepareDocument(recipePage, "https://recetas.example/tarta")
	require.NoError(t, err)

	assert.Equal(t, "Tarta de manzana casera", page.Title)
	assert.Equal(t, "La mejor tarta de manzana", page.Description)
	require.Len(t, page.Structured, 1)
	assert.Contains(t, page.Structured[0], `"recipeIngredient"`)
	assert.Contains(t, page.Images, "https://recetas.example/img/tarta.jpg")
	assert.Contains(t, page.Images, "https://cdn.example.com/paso1.jpg")
	assert.Contains(t, page.Body, "200 g de harina")
	assert.Contains(t, page.Body, "Hornear 40 minutos")
	assert.NotContains(t, page.Body, "tracking")

	text := page.String()
	assert.True(t, strings.HasPrefix(text, "URL: https://recetas.example/tarta"))
	assert.Contains(t, text, "Datos estructurados (JSON-LD):")
}

func TestPrepareDocument_MainArticle(t *testing.T) {
	paragraph := "Cortar las patatas en rodajas finas y pocharlas a fuego lento en abundante aceite de oliva durante veinte minutos, removiendo de vez en cuando para que no se peguen. "
	html := `<html><head><title>Tortilla de patatas</title></head><body>
<div class="sidebar">Recetas relacionadas que te pueden gustar</div>
<div class="content"><article>
<h1>Tortilla de patatas</h1>
<p>` + strings.Repeat(paragraph, 3) + `</p>
<p>` + strings.Repeat("Batir los huevos con una pizca de sal, mezclar con las patatas escurridas y cuajar por ambos lados. ", 3) + `</p>
<p>` + strings.Repeat("Servir templada, acompañada de pan y una ensalada verde con tomate. ", 3) + `</p>
</article></div>
</body></html>`

	page, err := PrepareDocument(html, "https://recetas.example/tortilla")
	require.NoError(t, err)
	assert.Contains(t, page.Body, "pocharlas a fuego lento")
	assert.Contains(t, page.Body, "Batir los huevos")
	assert.NotContains(t, page.Body, "Recetas relacionadas")
}

func TestPrepareDocument_WithoutURL(t *testing.T) {
	page, err := PrepareDocument("<p>Sopa de ajo: pan, ajo, pimentón.</p>", "")
	require.NoError(t, err)
	assert.Contains(t, page.Body, "Sopa de ajo")
	assert.Empty(t, page.Structured)
}

func TestPrepareVideo(t *testing.T) {
	t.Run("should read open graph metadata", func(t *testing.T) {
		html := `<html><head>
<meta property="og:title" content="Pasta cremosa en 10 minutos">
<meta property="og:description" content="Ingredientes: pasta, nata, queso">
<meta property="og:image" content="https://p16.tiktokcdn.com/cover.jpg">
</head><body></body></html>`

		page, err := PrepareVideo(html, "https://www.tiktok.com/@a/video/1", PlatformTikTok)
		require.NoError(t, err)
		assert.Equal(t, "Pasta cremosa en 10 minutos", page.Title)
		assert.Equal(t, "Ingredientes: pasta, nata, queso", page.Description)
		assert.Equal(t, []string{"https://p16.tiktokcdn.com/cover.jpg"}, page.Images)
	})

	t.Run("should use the full youtube description", func(t *testing.T) {
		html := `<html><head><meta property="og:description" content="Receta corta..."></head>
<body><script>var ytInitialPlayerResponse = {"videoDetails":{"shortDescription":"Ingredientes:\n- 2 huevos\n- 1 taza de leche \"entera\"","title":"x"}};</script></body></html>`

		page, err := PrepareVideo(html, "https://youtu.be/abc", PlatformYouTube)
		require.NoError(t, err)
		assert.Equal(t, "Ingredientes:\n- 2 huevos\n- 1 taza de leche \"entera\"", page.Body)
	})
}
