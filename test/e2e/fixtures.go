package e2e

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/tango/internal/models"
)

// handEditedHeader mimics a results workbook that someone reordered in a spreadsheet app
// and annotated with an extra column.
var handEditedHeader = []string{"Subreddit", "Notes", "Body", "Score", "Title", "Reddit Post URL"}

// WriteHandEditedWorkbook writes posts to path on a sheet named "Posts" using handEditedHeader.
func WriteHandEditedWorkbook(path string, posts []models.Post) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Posts"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	for col, h := range handEditedHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}
	for i, p := range posts {
		row := []interface{}{p.Subreddit, fmt.Sprintf("checked %d", i), p.Body, strconv.Itoa(p.Score), p.Title, p.URL}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
