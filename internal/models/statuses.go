package models

type UserRole string
type LikeStatus string
type LikeTargetType string
type JobCategory string
type JobType string
type JobWorkplace string

const (
	UserRoleAdmin     UserRole = "Admin"
	UserRoleModerator UserRole = "Moderator"
	UserRoleRecruiter UserRole = "Recruiter"
	UserRoleBasic     UserRole = "Basic"

	LikeStatusActive   LikeStatus = "active"
	LikeStatusInactive LikeStatus = "inactive"

	LikeTargetHousingOffer LikeTargetType = "housing_offer"
	LikeTargetJobOffer     LikeTargetType = "job_offer"
	LikeTargetItem         LikeTargetType = "item"

	JobCategoryTechnology      JobCategory = "Technology"
	JobCategoryMarketing       JobCategory = "Marketing"
	JobCategoryDesign          JobCategory = "Design"
	JobCategorySales           JobCategory = "Sales"
	JobCategoryFinance         JobCategory = "Finance"
	JobCategoryHumanResources  JobCategory = "Human Resources"
	JobCategoryCustomerService JobCategory = "Customer Service"
	JobCategoryEngineering     JobCategory = "Engineering"
	JobCategoryEducation       JobCategory = "Education"
	JobCategoryHealthcare      JobCategory = "Healthcare"
	JobCategoryOther           JobCategory = "Other"

	JobTypeFullTime   JobType = "Full-time"
	JobTypePartTime   JobType = "Part-time"
	JobTypeInternship JobType = "Internship"
	JobTypeFreelance  JobType = "Freelance"

	JobWorkplaceOnSite JobWorkplace = "On-site"
	JobWorkplaceHybrid JobWorkplace = "Hybrid"
	JobWorkplaceRemote JobWorkplace = "Remote"
)

// Сущности, к которым привязываются файлы
const (
	EntityTypeJobOffer       = "job_offer"
	EntityTypeJobApplication = "job_application"

	FileCategoryLogo = "logo"
	FileCategoryCV   = "cv"
)

func (t LikeTargetType) IsValid() bool {
	switch t {
	case LikeTargetHousingOffer, LikeTargetJobOffer, LikeTargetItem:
		return true
	}
	return false
}

func (c JobCategory) IsValid() bool {
	switch c {
	case JobCategoryTechnology, JobCategoryMarketing, JobCategoryDesign, JobCategorySales,
		JobCategoryFinance, JobCategoryHumanResources, JobCategoryCustomerService,
		JobCategoryEngineering, JobCategoryEducation, JobCategoryHealthcare, JobCategoryOther:
		return true
	}
	return false
}

func (t JobType) IsValid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeInternship, JobTypeFreelance:
		return true
	}
	return false
}

func (w JobWorkplace) IsValid() bool {
	switch w {
	case JobWorkplaceOnSite, JobWorkplaceHybrid, JobWorkplaceRemote:
		return true
	}
	return false
}
