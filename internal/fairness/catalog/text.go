package catalog

import (
	"strings"

	"fairdash/internal/fairness/models"
)

var definitions = map[string]string{
	models.MeasureStatisticalParity:      "Difference in denial rates. Statistical parity is satisfied if applicants from different groups are denied at the same rate. A violation of this measure is defined as the difference in denial rate between a target demographic group and the reference demographic group. For example, a statistical parity value of 10 for Black applicants means Black applicants are 10 percentage points more likely to be denied on their loan application than White applicants. Negative values indicate a lower denial rate relative to the reference group.",
	models.MeasurePredictiveParity:       "Difference in default rates. Predictive parity is satisfied if borrowers from different groups default at the same rate. A violation of this measure is defined as the difference in default rate between a target demographic group and the reference demographic group. For example, a predictive parity value of 10 for Black borrowers means that Black borrowers are 10 percentage points more likely to default than White borrowers. Negative values indicate a lower default rate relative to the reference group.",
	models.MeasureMarginalCandidates:     "Difference in lending standards. The marginal outcome test is satisfied if borrowers at the margin default at the same rate across groups. Marginal applicants are defined as those who submit one application resulting in an approval and another resulting in a denial. A violation of this measure is defined as the difference in default rate between marginal applicants in the reference demographic group and marginal applicants in a target demographic group. For example, a value of 10 for Black borrowers means that Black marginal borrowers are 10 percentage points less likely to default than White marginal borrowers. This is because lower default rates at the margin imply higher lending standards among this group, relative to the reference group.",
	models.MeasureEqualityOfOpportunity:  "Difference in denial rates for creditworthy borrowers; captures a notion of unfair denials. Equality of opportunity is satisfied if creditworthy borrowers are denied at the same rate across groups. A violation of this measure is defined as the difference in denial probability between creditworthy applicants in a target demographic group and creditworthy applicants in the reference demographic group. We define creditworthy applicants as those that did not default on their loan. To estimate this measure, we use the set of applicants who apply multiple times, originate one loan, and do not default. For example, a value of 10 for Black borrowers means that Black creditworthy borrowers are 10 percentage points more likely to be denied on their loan applications than White creditworthy borrowers.",
	models.MeasureEqualityOfGoodwill:     "Difference in denial rates for non-creditworthy borrowers, captures a notion of unfair approvals. Equality of goodwill is satisfied if non-creditworthy borrowers are denied at the same rate across groups. A violation of this measure is defined as the difference in denial probability between non-creditworthy applicants in a target demographic group and non-creditworthy applicants in the reference demographic group. We define non-creditworthy borrowers as those that defaulted on their loan. To estimate this measure, we use the set of applicants who apply multiple times, originate one loan, and later default. For example, a value of 10 for Black borrowers means that Black non-creditworthy borrowers are 10 percentage points more likely to be denied on their loan applications than White non-creditworthy borrowers.",
	models.MeasureConditionalParitySmall: "Conditional difference in denial rates. Conditional statistical parity is satisfied if applicants from different groups, conditional on the same attributes, are denied at the same rate. A violation of this measure is defined as the difference in denial rates between a target and the reference demographic group among those with the same attributes. For example, a value of 10 for Black applicants means that Black applicants are 10 percentage points more likely to be denied on their loan application than White applicants with the same set of attributes (e.g., credit score or loan amount). This \"Small model\" version is a linear model and includes the conditioning variables: applicant income, loan amount, loan purpose, and an indicator for whether a coapplicant is present.",
	models.MeasureConditionalParityLarge: "Conditional difference in denial rates. Conditional statistical parity is satisfied if applicants from different groups, conditional on the same attributes, are denied at the same rate. A violation of this measure is defined as the difference in denial rates between a target and the reference demographic group among those with the same attributes. For example, a value of 10 for Black applicants means that Black applicants are 10 percentage points more likely to be denied on their loan application than White applicants with the same set of attributes (e.g., credit score or loan amount). This \"Large model\" version includes an indicator for whether a coapplicant is present, loan purpose, the outcome of the automated underwriting system, and binned variables: applicant income, loan amount, credit score, debt-to-income ratio, and loan-to-value ratio.",
	models.MeasureRepresentativeness:     "Amount of under-representation among those approved; corresponds to the idea that approved applicants should be \"representative\" of qualified applicants. This measure is satisfied if the proportion of approved applicants from a group is equal to the proportion of qualified applicants from that group. We define qualified applicants as those who have low estimated default risk. A violation of this measure is the difference in the proportion of qualified applicants from a target demographic group and the proportion of approved applicants from the same demographic group. For example, a value of 10 for Black applicants means that there are 10 percentage points fewer Black approved applicants than Black qualified applicants. Thus, if representativeness is positive, the group is \"under-represented.\"",
}

// DefinitionUnavailable is shown for measures without a definition.
const DefinitionUnavailable = "Definition not available."

// Definition returns the long-form explanation of a measure.
func Definition(measure string) string {
	if d, ok := definitions[measure]; ok {
		return d
	}
	return DefinitionUnavailable
}

// Narrative placeholders: {state} {group} {value} {comparison} {reference}.
var narratives = map[string]string{
	models.MeasureMarginalCandidates:     "In {state}, default rates for {group} borrowers at the margin--or borrowers who submit one application resulting in an approval and another resulting in a denial--were {value} percentage points {comparison} than default rates for {reference} borrowers at the margin.",
	models.MeasureStatisticalParity:      "In {state}, denial rates for {group} applicants were {value} percentage points {comparison} than denial rates for {reference} applicants.",
	models.MeasurePredictiveParity:       "In {state}, default rates for {group} borrowers were {value} percentage points {comparison} than default rates for {reference} borrowers.",
	models.MeasureConditionalParityLarge: "In {state}, denial rates for {group} applicants were {value} percentage points {comparison} than denial rates for {reference} applicants, conditional on a large set of features (indicator for whether a coapplicant is present, loan purpose, the outcome of the automated underwriting system, applicant income, loan amount, credit score, debt-to-income ratio, and loan-to-value ratio).",
	models.MeasureConditionalParitySmall: "In {state}, denial rates for {group} applicants were {value} percentage points {comparison} than denial rates for {reference} applicants, conditional on a small set of features (applicant income, loan amount, loan purpose, and an indicator for whether a coapplicant is present).",
	models.MeasureEqualityOfOpportunity:  "In {state}, denial rates for creditworthy {group} applicants were {value} percentage points {comparison} than denial rates for creditworthy {reference} applicants.",
	models.MeasureEqualityOfGoodwill:     "In {state}, denial rates for non-creditworthy {group} applicants were {value} percentage points {comparison} than denial rates for non-creditworthy {reference} applicants.",
	models.MeasureRepresentativeness:     "In {state}, the fraction of creditworthy {group} applicants was {value} percentage points {comparison} than the fraction of approved {group} applicants.",
}

// NarrativeArgs fills a narrative template.
type NarrativeArgs struct {
	State      string
	Group      string
	Value      string
	Comparison string
	Reference  string
}

// Narrative renders the hover sentence for a measure. ok is false when the
// measure has no template.
func Narrative(measure string, args NarrativeArgs) (string, bool) {
	tmpl, ok := narratives[measure]
	if !ok {
		return "", false
	}
	r := strings.NewReplacer(
		"{state}", args.State,
		"{group}", args.Group,
		"{value}", args.Value,
		"{comparison}", args.Comparison,
		"{reference}", args.Reference,
	)
	return r.Replace(tmpl), true
}

// DataSourceLine names the upstream data behind a set of measures.
func DataSourceLine(measures []string) string {
	var hmda, ice bool
	for _, m := range measures {
		switch models.ConfigFor(m).Source {
		case models.SourceICEMcDash:
			ice = true
		default:
			hmda = true
		}
	}
	switch {
	case hmda && ice:
		return "Source: Authors calculations based on HMDA and ICE, McDash data"
	case ice:
		return "Source: Authors calculations based on ICE, McDash data"
	default:
		return "Source: Authors calculations based on HMDA data"
	}
}
