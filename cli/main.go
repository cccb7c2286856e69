package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: fabrica-cli <command> [flags]

commands:
  products    list semi-finished products (-q filter)
  ingredients show a product's recipe with stock (-product id)
  preview     preview material feasibility for a draft (-lines "id:qty,id:qty")
  create      submit a production order (-lines "id:qty,id:qty" [-notes text])
  order       show an order (-id n)
  complete    complete a pending order (-id n)
  cancel      cancel a pending order (-id n)
  next-code   draw the next document code ([-name seq] [-prefix p])`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	client := NewApiClient()
	if err := client.CheckHealth(); err != nil {
		fmt.Fprintf(os.Stderr, "API server at %s is not available: %v\n", client.BaseURL, err)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "products":
		err = runProducts(client, os.Args[2:])
	case "ingredients":
		err = runIngredients(client, os.Args[2:])
	case "preview":
		err = runPreview(client, os.Args[2:])
	case "create":
		err = runCreate(client, os.Args[2:])
	case "order":
		err = runOrder(client, os.Args[2:])
	case "complete":
		err = runStatus(client, os.Args[2:], "completed")
	case "cancel":
		err = runStatus(client, os.Args[2:], "cancelled")
	case "next-code":
		err = runNextCode(client, os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runProducts(client *ApiClient, args []string) error {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	q := fs.String("q", "", "name filter")
	fs.Parse(args)

	products, err := client.Products(*q)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tUNIT\tBATCH\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%g\t%g\n", p.ID, p.Name, p.Unit, p.BatchSize, p.AvailableStock)
	}
	return w.Flush()
}

func runIngredients(client *ApiClient, args []string) error {
	fs := flag.NewFlagSet("ingredients", flag.ExitOnError)
	product := fs.Uint("product", 0, "product id")
	fs.Parse(args)
	if *product == 0 {
		return fmt.Errorf("ingredients: -product is required")
	}

	recipe, err := client.Ingredients(uint(*product))
	if err != nil {
		return err
	}
	fmt.Printf("batch size: %g\n", recipe.BatchSize)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMATERIAL\tPER BATCH\tSTOCK\tUNIT COST")
	for _, ing := range recipe.Ingredients {
		fmt.Fprintf(w, "%d\t%s\t%g %s\t%g %s\t%g\n",
			ing.ID, ing.Name, ing.QuantityPerBatch, ing.Unit, ing.AvailableStock, ing.Unit, ing.UnitCost)
	}
	return w.Flush()
}

func runPreview(client *ApiClient, args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	linesSpec := fs.String("lines", "", `draft lines as "productID:qty,productID:qty"`)
	fs.Parse(args)

	lines, err := parseLines(*linesSpec)
	if err != nil {
		return err
	}
	preview, err := client.PreviewOrder(lines)
	if err != nil {
		return err
	}

	for i, line := range preview.Lines {
		if !line.Resolved {
			fmt.Printf("line %d: no preview available\n", i)
			continue
		}
		fmt.Printf("line %d (estimated cost %.2f):\n", i, line.EstimatedCost)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "  MATERIAL\tREQUIRED\tAVAILABLE\t")
		for _, req := range line.Requirements {
			mark := ""
			if req.Short {
				mark = "SHORT"
			}
			fmt.Fprintf(w, "  %s\t%.2f %s\t%.2f %s\t%s\n",
				req.Name, req.Required, req.Unit, req.AdjustedAvailable, req.Unit, mark)
		}
		w.Flush()
	}

	fmt.Printf("total estimated cost: %.2f\n", preview.Summary.TotalEstimatedCost)
	if len(preview.Summary.MissingMaterials) == 0 {
		fmt.Println("all materials available")
		return nil
	}
	fmt.Println("missing materials:")
	for _, m := range preview.Summary.MissingMaterials {
		fmt.Printf("  %s: need %.2f %s, have %.2f\n", m.Name, m.Needed, m.Unit, m.Available)
	}
	if preview.Summary.MissingOmitted > 0 {
		fmt.Printf("  ...and %d more\n", preview.Summary.MissingOmitted)
	}
	return nil
}

func runCreate(client *ApiClient, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	linesSpec := fs.String("lines", "", `order lines as "productID:qty,productID:qty"`)
	notes := fs.String("notes", "", "order notes")
	fs.Parse(args)

	lines, err := parseLines(*linesSpec)
	if err != nil {
		return err
	}
	order, err := client.CreateOrder(lines, *notes)
	if err != nil {
		return err
	}
	fmt.Printf("created order %s (id %d)\n", order.Code, order.ID)
	return nil
}

func runOrder(client *ApiClient, args []string) error {
	fs := flag.NewFlagSet("order", flag.ExitOnError)
	id := fs.Uint("id", 0, "order id")
	fs.Parse(args)
	if *id == 0 {
		return fmt.Errorf("order: -id is required")
	}

	order, err := client.GetOrder(uint(*id))
	if err != nil {
		return err
	}
	fmt.Printf("order %s: %s\n", order.Code, order.Status)
	for _, item := range order.Items {
		fmt.Printf("  line %d: product %d x %g\n", item.Position, item.ProductID, item.Quantity)
	}
	return nil
}

func runStatus(client *ApiClient, args []string, status string) error {
	fs := flag.NewFlagSet(status, flag.ExitOnError)
	id := fs.Uint("id", 0, "order id")
	fs.Parse(args)
	if *id == 0 {
		return fmt.Errorf("%s: -id is required", status)
	}

	order, err := client.UpdateOrderStatus(uint(*id), status)
	if err != nil {
		return err
	}
	fmt.Printf("order %s is now %s\n", order.Code, order.Status)
	return nil
}

func runNextCode(client *ApiClient, args []string) error {
	fs := flag.NewFlagSet("next-code", flag.ExitOnError)
	name := fs.String("name", "", "sequence name")
	prefix := fs.String("prefix", "", "code prefix override")
	fs.Parse(args)

	code, err := client.NextCode(*name, *prefix)
	if err != nil {
		return err
	}
	fmt.Println(code)
	return nil
}

// parseLines turns "10:5,20:2.5" into draft lines
func parseLines(spec string) ([]DraftLine, error) {
	if spec == "" {
		return nil, fmt.Errorf("-lines is required")
	}
	var lines []DraftLine
	for _, part := range strings.Split(spec, ",") {
		fields := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("bad line %q, want productID:qty", part)
		}
		productID, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad product id %q", fields[0])
		}
		qty, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad quantity %q", fields[1])
		}
		lines = append(lines, DraftLine{ProductID: uint(productID), Quantity: qty})
	}
	return lines, nil
}
