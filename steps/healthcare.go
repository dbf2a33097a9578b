package steps

import (
	"context"
	"math/rand"

	"github.com/ssoriche/prioflow/workflow"
)

// PatientDataIngestion collects and validates intake data, ported from
// patient_data_ingestion_step.
func PatientDataIngestion(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	c.Data["medical_history"] = "collected"
	c.Data["vital_signs"] = map[string]any{"bp": "120/80", "hr": 72, "temp": 98.6}
	c.Data["lab_results"] = "pending"
	c.Data["patient_consent"] = true
	return c, nil
}

// SymptomAnalysis builds a differential diagnosis from reported symptoms,
// ported from symptom_analysis_step.
func SymptomAnalysis(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	c.Data["symptom_severity"] = "moderate"
	c.Data["symptom_duration"] = "3_days"
	c.Data["differential_diagnosis"] = []string{"condition_a", "condition_b", "condition_c"}
	c.Data["risk_factors"] = []string{"age", "family_history"}
	return c, nil
}

// DiagnosticImaging processes radiology results, ported from
// diagnostic_imaging_step.
func DiagnosticImaging(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	imagingType := requestString(c.Request, "imaging_type", "xray")
	c.Data["imaging_completed"] = true
	c.Data["imaging_findings"] = "normal_with_minor_abnormalities"
	c.Data["radiologist_review"] = "completed"
	c.Data["imaging_report_id"] = deterministicID("IMG_", imagingType)
	return c, nil
}

// TreatmentRecommendation proposes a treatment plan, ported from
// treatment_recommendation_step.
func TreatmentRecommendation(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	c.Data["recommended_treatment"] = "medication_therapy"
	c.Data["medication_list"] = []string{"med_a_10mg", "med_b_5mg"}
	c.Data["follow_up_required"] = true
	c.Data["follow_up_timeline"] = "2_weeks"
	return c, nil
}

// PrescriptionGeneration issues an e-prescription, ported from
// prescription_generation_step.
func PrescriptionGeneration(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	c.Data["prescription_id"] = randomID("RX_")
	c.Data["pharmacy_notified"] = true
	c.Data["drug_interaction_check"] = "passed"
	c.Data["insurance_verification"] = "approved"
	return c, nil
}

// DiagnosisPipeline is the medical-diagnosis workflow's step list.
func DiagnosisPipeline() []workflow.NamedStep {
	return []workflow.NamedStep{
		workflow.Step("patient_data_ingestion", PatientDataIngestion),
		workflow.Step("symptom_analysis", SymptomAnalysis),
		workflow.Step("diagnostic_imaging", DiagnosticImaging),
		workflow.Step("treatment_recommendation", TreatmentRecommendation),
		workflow.Step("prescription_generation", PrescriptionGeneration),
	}
}

// EligibilityScreening screens a candidate for clinical-trial enrollment,
// ported from eligibility_screening_step.
func EligibilityScreening(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	age := requestInt(c.Request, "age", 0)
	conditionCount := requestSliceLen(c.Request, "conditions")

	ageEligible := age >= 18 && age <= 75
	conditionMatch := conditionCount > 0

	c.Data["age_eligible"] = ageEligible
	c.Data["condition_match"] = conditionMatch
	c.Data["exclusion_criteria_met"] = false
	c.Data["preliminary_eligible"] = ageEligible && conditionMatch
	return c, nil
}

// InformedConsent records consent documentation, ported from
// informed_consent_step.
func InformedConsent(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	c.Data["consent_form_provided"] = true
	c.Data["risks_explained"] = true
	c.Data["patient_questions_answered"] = true
	c.Data["consent_signed"] = true
	c.Data["consent_date"] = "today"
	return c, nil
}

// BaselineAssessment records baseline vitals and labs, ported from
// baseline_assessment_step.
func BaselineAssessment(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	c.Data["baseline_vitals"] = map[string]any{"bp": "118/78", "weight": "70kg", "height": "175cm"}
	c.Data["baseline_labs"] = "collected"
	c.Data["quality_of_life_survey"] = "completed"
	c.Data["baseline_imaging"] = "scheduled"
	return c, nil
}

// Randomization assigns the participant to a treatment or control arm,
// ported from randomization_step.
func Randomization(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	group := "control"
	if rand.Float64() > 0.5 {
		group = "treatment"
	}
	c.Data["randomization_completed"] = true
	c.Data["treatment_group"] = group
	c.Data["study_drug_assigned"] = "drug_" + group
	c.Data["randomization_date"] = "today"
	return c, nil
}

// ClinicalTrialEnrollmentPipeline is the trial-enrollment workflow's step
// list.
func ClinicalTrialEnrollmentPipeline() []workflow.NamedStep {
	return []workflow.NamedStep{
		workflow.Step("eligibility_screening", EligibilityScreening),
		workflow.Step("informed_consent", InformedConsent),
		workflow.Step("baseline_assessment", BaselineAssessment),
		workflow.Step("randomization", Randomization),
	}
}
