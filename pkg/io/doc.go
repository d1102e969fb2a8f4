// Package io reads and writes plans in the structured JSON curriculum
// format.
//
// # JSON Format
//
//	{
//	  "name": "Computer Science",
//	  "curriculum_terms": [
//	    {
//	      "id": 1,
//	      "name": "Term 1",
//	      "curriculum_items": [
//	        {"id": 1, "name": "CSE 11", "credits": 4, "curriculum_requisites": []}
//	      ]
//	    },
//	    {
//	      "id": 2,
//	      "name": "Term 2",
//	      "curriculum_items": [
//	        {
//	          "id": 2, "name": "CSE 12", "credits": 4,
//	          "curriculum_requisites": [
//	            {"source_id": 1, "target_id": 2, "type": "CurriculumPrerequisite"}
//	          ]
//	        }
//	      ]
//	    }
//	  ]
//	}
//
// Requisite types may use the short tags (prereq, coreq, strict-coreq) or
// the Curriculum* long tags. Any other tag is an error wrapping
// [plan.ErrInvalidRequisiteType]. Items may carry a "metrics" object with
// "complexity", "centrality", "delay factor" and "blocking factor"; they
// are written by [WriteJSON] and ignored on import, since metrics are
// always recomputed.
//
// # Import
//
// [ReadJSON] decodes from any io.Reader. [IsJSON] tells a JSON curriculum
// from the tabular export by file extension.
//
//	p, err := io.ReadJSON(f)
//
// # Export
//
// [WriteJSON] writes a plan, with metrics when given a report. Terms are renamed "Term N" on export.
package io
