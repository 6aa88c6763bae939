package main

import (
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/calc"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var calcCommand = &cli.Command{
	Name:  "calc",
	Usage: "Run the fee calculators without a database",
	Subcommands: []*cli.Command{
		{
			Name:  "property",
			Usage: "Price a property and its yearly tax and trash fee",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "area", Usage: "Area in square meters", Required: true},
				&cli.StringFlag{Name: "type", Value: "апартамент"},
				&cli.StringFlag{Name: "oblast", Value: "София"},
				&cli.StringFlag{Name: "district"},
				&cli.StringFlag{Name: "purpose", Value: "Жилищно"},
				&cli.BoolFlag{Name: "adjoining-parts"},
			},
			Action: func(c *cli.Context) error {
				_, err := pp.Println(calc.Assess(
					c.Int("area"),
					c.String("type"),
					c.String("oblast"),
					c.String("district"),
					c.String("purpose"),
					c.Bool("adjoining-parts"),
				))
				return err
			},
		},
		{
			Name:  "vehicle",
			Usage: "Compute the annual vehicle tax",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "kw", Usage: "Engine power in kW", Required: true},
				&cli.IntFlag{Name: "year", Usage: "Manufacture year", Required: true},
				&cli.StringFlag{Name: "euro", Value: "EURO_4"},
				&cli.IntFlag{Name: "tax-year", Usage: "Defaults to the current year"},
			},
			Action: func(c *cli.Context) error {
				taxYear := c.Int("tax-year")
				if taxYear == 0 {
					taxYear = time.Now().UTC().Year()
				}
				_, err := pp.Println(map[string]any{
					"taxYear": taxYear,
					"amount":  calc.VehicleAnnualTax(c.Int("kw"), c.Int("year"), c.String("euro"), taxYear),
				})
				return err
			},
		},
	},
}
