package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/tastebox/backend/internal/extraction"
)

// PDFExporter renders recipes as printable A4 documents
type PDFExporter struct {
	compress bool
}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{compress: true}
}

// WritePDF writes recipe to w. Text is translated to cp1252 for the core fonts.
func (e *PDFExporter) WritePDF(w io.Writer, recipe *extraction.StructuredRecipe) error {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(e.compress)
	doc.SetTitle(recipe.Title, true)
	doc.SetCreator("TasteBox", true)
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont("Helvetica", "I", 8)
		doc.SetTextColor(128, 128, 128)
		doc.CellFormat(0, 10, fmt.Sprintf("%d", doc.PageNo()), "", 0, "C", false, 0, "")
	})
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 20)
	doc.MultiCell(0, 9, tr(recipe.Title), "", "L", false)
	doc.Ln(2)

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(90, 90, 90)
	doc.MultiCell(0, 5, tr(metadataLine(recipe)), "", "L", false)
	doc.SetTextColor(0, 0, 0)
	doc.Ln(3)

	if recipe.Description != "" {
		doc.SetFont("Helvetica", "I", 11)
		doc.MultiCell(0, 6, tr(recipe.Description), "", "L", false)
		doc.Ln(3)
	}

	section(doc, tr("Ingredientes"))
	doc.SetFont("Helvetica", "", 11)
	for _, ing := range recipe.Ingredients {
		doc.MultiCell(0, 6, tr("• "+ingredientLine(ing)), "", "L", false)
	}
	doc.Ln(3)

	section(doc, tr("Preparación"))
	doc.SetFont("Helvetica", "", 11)
	for _, step := range recipe.Instructions {
		doc.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", step.Step, step.Description)), "", "L", false)
		doc.Ln(1)
	}

	if len(recipe.Tags) > 0 || recipe.SourceURL != "" {
		doc.Ln(4)
		doc.SetFont("Helvetica", "", 9)
		doc.SetTextColor(90, 90, 90)
		if len(recipe.Tags) > 0 {
			doc.MultiCell(0, 5, tr("Etiquetas: "+strings.Join(recipe.Tags, ", ")), "", "L", false)
		}
		if recipe.SourceURL != "" {
			doc.MultiCell(0, 5, tr("Fuente: "+recipe.SourceURL), "", "L", false)
		}
	}

	return doc.Output(w)
}

func section(doc *gofpdf.Fpdf, title string) {
	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	doc.Ln(2)
}

func metadataLine(r *extraction.StructuredRecipe) string {
	parts := []string{fmt.Sprintf("Preparación: %d min", r.PrepTime)}
	if r.CookTime != nil {
		parts = append(parts, fmt.Sprintf("Cocción: %d min", *r.CookTime))
	}
	parts = append(parts, fmt.Sprintf("Raciones: %d", r.Servings), "Dificultad: "+r.Difficulty)
	if r.RecipeType != "" {
		parts = append(parts, r.RecipeType)
	}
	return strings.Join(parts, " · ")
}

func ingredientLine(ing extraction.Ingredient) string {
	amount := strings.TrimSpace(ing.Amount + " " + ing.Unit)
	switch amount {
	case "":
		return ing.Name
	case extraction.DefaultAmount:
		return ing.Name + " (" + amount + ")"
	}
	return amount + " " + ing.Name
}
