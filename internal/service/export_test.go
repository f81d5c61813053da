package service

// TestApplicant exposes the shared test applicant to the external service_test package.
const TestApplicant = applicant
