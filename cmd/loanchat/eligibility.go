package main

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"loan-assistant/domain"
	"loan-assistant/service"
)

var (
	eligibilityPhone  string
	eligibilityAmount string
	eligibilitySalary string
)

var eligibilityCmd = &cobra.Command{
	Use:   "eligibility",
	Short: "Evaluate one loan request against a customer profile",
	Example: `  loanchat eligibility --phone 9876543210 --amount 500000
  loanchat eligibility --phone 9123456780 --amount 700000 --salary 45000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(eligibilityAmount)
		if err != nil {
			return fmt.Errorf("invalid --amount %q: %w", eligibilityAmount, err)
		}
		var salary decimal.NullDecimal
		if eligibilitySalary != "" {
			d, err := decimal.NewFromString(eligibilitySalary)
			if err != nil {
				return fmt.Errorf("invalid --salary %q: %w", eligibilitySalary, err)
			}
			salary = decimal.NewNullDecimal(d)
		}

		profile, err := assistant.Profiles.FetchProfile(cmd.Context(), domain.NormalizePhone(eligibilityPhone))
		if err != nil {
			return err
		}
		rate, err := assistant.Underwriting.RateFor(profile)
		if err != nil {
			return err
		}
		result, err := assistant.Underwriting.Evaluate(profile, domain.LoanRequest{Amount: amount}, salary)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(domain.EligibilityDecision{
			Profile:      profile.Summary(rate),
			Result:       result,
			CounterOffer: service.CounterOfferFor(result),
		})
	},
}

func init() {
	eligibilityCmd.Flags().StringVar(&eligibilityPhone, "phone", "", "customer mobile number")
	eligibilityCmd.Flags().StringVar(&eligibilityAmount, "amount", "", "requested loan amount in rupees")
	eligibilityCmd.Flags().StringVar(&eligibilitySalary, "salary", "", "disclosed monthly salary in rupees")
	_ = eligibilityCmd.MarkFlagRequired("phone")
	_ = eligibilityCmd.MarkFlagRequired("amount")
}
