package domain

import "time"

type Tutor struct {
	TutorID         string       `json:"id" dynamodbav:"tutor_id"`
	VarsityVerified bool         `json:"varsity_verified" dynamodbav:"varsity_verified"`
	VarsityInfos    *Affiliation `json:"varsity_infos,omitempty" dynamodbav:"varsity_infos,omitempty"`
	DossierObject   string       `json:"-" dynamodbav:"dossier_object,omitempty"`
	CreatedAt       time.Time    `json:"created" dynamodbav:"created_at"`
	UpdatedAt       time.Time    `json:"updated" dynamodbav:"updated_at"`
}
