package models

import sm "github.com/Smartsec916/Observe-and-Report-sub001/internal/shared/models"

type (
	Identity          = sm.Identity
	Session           = sm.Session
	ObservationRecord = sm.ObservationRecord
	ObservationPatch  = sm.ObservationPatch
	SearchFilter      = sm.SearchFilter
	Document          = sm.Document
	ImportResult      = sm.ImportResult
)
