package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"safenest/internal/domain/entity"
)

// renderReport печатает сводку и таблицы дефектов и нарушений норм
func renderReport(w io.Writer, r *entity.InspectionReport) error {
	fmt.Fprintf(w, "Risk score: %d/100 (%s)\n", r.RiskScore, r.RiskLevel)
	fmt.Fprintf(w, "Estimated cost: ₹%d (base ₹%d)\n", r.TotalCost, r.BaseCost)
	fmt.Fprintf(w, "Defects: %d (high %d, medium %d, low %d, rejected images %d)\n\n",
		r.TotalDefects, r.HighRisk, r.MediumRisk, r.LowRisk, r.RejectedImages)

	if len(r.AllDefects) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header("Image", "Type", "Severity", "Location", "Confidence", "Cost (INR)", "Code")
		for _, d := range r.AllDefects {
			if err := table.Append([]string{
				d.SourceImage,
				d.Type,
				string(d.Severity),
				d.Location,
				strconv.FormatFloat(d.Confidence, 'f', 2, 64),
				strconv.Itoa(d.EstimatedCost),
				d.CodeRef,
			}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	if len(r.Violations) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header("Code", "Title", "Defect", "Location", "Status", "Match")
		for _, v := range r.Violations {
			if err := table.Append([]string{
				v.CodeID,
				v.CodeTitle,
				v.DefectRef,
				v.Location,
				string(v.Status),
				string(v.Resolution),
			}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	for _, rec := range r.Recommendations {
		fmt.Fprintln(w, rec)
	}
	return nil
}
