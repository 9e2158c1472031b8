package main

import (
	"strings"

	"contentengine/models"

	"github.com/spf13/cobra"
)

func newProfileCmd(a *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the brand profile used for generation",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the brand profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authed()
			if err != nil {
				return err
			}
			p, err := c.GetProfile(cmd.Context())
			if err != nil {
				return err
			}
			printProfile(cmd, p)
			return nil
		},
	})

	var in models.ProfileInput
	set := &cobra.Command{
		Use:   "set",
		Short: "Save the brand profile",
		Long: `Saves the brand profile. Flags left out keep their current value.

Tones: ` + strings.Join(models.BrandTones, ", "),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authed()
			if err != nil {
				return err
			}
			current, err := c.GetProfile(cmd.Context())
			if err != nil {
				return err
			}

			merged := models.ProfileInput{
				BrandTone:      current.BrandTone,
				Industry:       current.Industry,
				ProductList:    current.ProductList,
				TargetAudience: current.TargetAudience,
			}
			flags := cmd.Flags()
			if flags.Changed("tone") {
				merged.BrandTone = in.BrandTone
			}
			if flags.Changed("industry") {
				merged.Industry = in.Industry
			}
			if flags.Changed("products") {
				merged.ProductList = in.ProductList
			}
			if flags.Changed("audience") {
				merged.TargetAudience = in.TargetAudience
			}

			p, err := c.SaveProfile(cmd.Context(), merged)
			if err != nil {
				return err
			}
			printProfile(cmd, p)
			return nil
		},
	}
	set.Flags().StringVar(&in.BrandTone, "tone", "", "brand tone")
	set.Flags().StringVar(&in.Industry, "industry", "", "industry")
	set.Flags().StringVar(&in.ProductList, "products", "", "products or services")
	set.Flags().StringVar(&in.TargetAudience, "audience", "", "target audience")
	cmd.AddCommand(set)

	return cmd
}

func printProfile(cmd *cobra.Command, p *models.Profile) {
	printf(cmd, "Tone:      %s\nIndustry:  %s\nProducts:  %s\nAudience:  %s\n",
		p.BrandTone, p.Industry, p.ProductList, p.TargetAudience)
}
