package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/AliAamir1/budsapp/internal/api"
	"github.com/AliAamir1/budsapp/internal/models"
)

// Onboard walks the user through the study profile: course, exam, study plan
// and partner preferences. Browsing stays locked until all of them are set.
// Re-running the command edits the existing profile; empty answers keep the
// current values.
func (a *App) Onboard(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Log in first.")
		return nil
	}

	if err := a.ShowExams(ctx); err != nil {
		return err
	}

	req := api.UpdateProfileRequest{}
	var err error

	if req.Course, err = getSimpleText(a.reader, "Your course of study", os.Stdout); err != nil {
		return err
	}
	if req.ExamDate, err = getSimpleText(a.reader, "Exam date (YYYY-MM-DD)", os.Stdout); err != nil {
		return err
	}

	examID, err := getSimpleText(a.reader, "Exam id from the catalog above", os.Stdout)
	if err != nil {
		return err
	}
	start, err := getSimpleText(a.reader, "Study start date (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}
	end, err := getSimpleText(a.reader, "Study end date (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}
	daily, err := getSimpleText(a.reader, "Daily study time (e.g. 2h)", os.Stdout)
	if err != nil {
		return err
	}
	intensity, err := getSimpleText(a.reader, "Intensity (light/moderate/intense)", os.Stdout)
	if err != nil {
		return err
	}
	req.ExamPreferences = &models.ExamPreferences{
		ExamID:         examID,
		StudyStartDate: start,
		StudyEndDate:   end,
		DailyStudyTime: daily,
		Intensity:      intensity,
	}

	schedule, err := getSimpleText(a.reader, "Preferred study schedule (morning/evening/flexible)", os.Stdout)
	if err != nil {
		return err
	}
	style, err := getSimpleText(a.reader, "Communication style (chat/call/in-person)", os.Stdout)
	if err != nil {
		return err
	}
	req.PartnerPreferences = &models.PartnerPreferences{
		StudySchedule:      schedule,
		CommunicationStyle: style,
	}

	if req.Bio, err = getOptionalText(a.reader, "Short bio", os.Stdout); err != nil {
		return err
	}

	user, err := a.auth.UpdateProfile(ctx, req)
	if err != nil {
		return err
	}

	if user.OnboardingComplete() {
		printlnFn("Profile complete, happy browsing!")
	} else {
		printlnFn("Profile saved, but onboarding is still incomplete.")
	}
	return nil
}

// ShowExams prints the exam catalog.
func (a *App) ShowExams(ctx context.Context) error {
	exams, err := a.exams.Exams(ctx)
	if err != nil {
		return err
	}
	printlnFn("Exams:")
	for _, e := range exams {
		printlnFn(fmt.Sprintf("  %s  %s (%s, %s)", e.ID, e.Name, e.Category, e.Country))
	}
	return nil
}
