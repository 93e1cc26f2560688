package normalize

// resultSchemaJSON is the output contract, checked after coercion. Coercion
// is lenient; this is the strict gate.
const resultSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": [
    "provider_name", "contract_nickname", "contract_type", "monthly_cost",
    "annual_cost", "currency", "payment_frequency", "start_date", "end_date",
    "auto_renewal", "cancellation_notice_days", "key_terms", "parties",
    "risks", "confidence", "complexity", "complexity_reasons",
    "documents_analyzed", "escalated", "escalation_model",
    "security_findings", "warnings"
  ],
  "properties": {
    "provider_name": {"type": ["string", "null"]},
    "contract_nickname": {"type": ["string", "null"]},
    "contract_type": {
      "type": ["string", "null"],
      "enum": ["insurance", "utility", "subscription", "rental", "saas", "service", "other", null]
    },
    "monthly_cost": {"type": ["number", "null"]},
    "annual_cost": {"type": ["number", "null"]},
    "currency": {"enum": ["USD", "EUR", "GBP", "CAD", "AUD", "JPY"]},
    "payment_frequency": {
      "type": ["string", "null"],
      "enum": ["monthly", "annual", "quarterly", "one-time", "other", null]
    },
    "start_date": {"type": ["string", "null"], "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
    "end_date": {"type": ["string", "null"], "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
    "auto_renewal": {"type": ["boolean", "null"]},
    "cancellation_notice_days": {"type": ["integer", "null"], "minimum": 0},
    "key_terms": {"type": "array", "items": {"type": "string"}},
    "parties": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "role"],
        "properties": {
          "name": {"type": "string"},
          "role": {"type": "string"}
        }
      }
    },
    "risks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "description", "severity"],
        "properties": {
          "title": {"type": "string"},
          "description": {"type": "string"},
          "severity": {"enum": ["high", "medium", "low"]}
        }
      }
    },
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "complexity": {"enum": ["low", "medium", "high"]},
    "complexity_reasons": {"type": "array", "items": {"type": "string"}},
    "documents_analyzed": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["filename", "document_type", "summary"],
        "properties": {
          "filename": {"type": "string"},
          "document_type": {
            "enum": ["main_agreement", "sow", "terms_conditions", "amendment", "addendum", "exhibit", "schedule", "other"]
          },
          "summary": {"type": "string"}
        }
      }
    },
    "escalated": {"type": "boolean"},
    "escalation_model": {"type": ["string", "null"]},
    "security_findings": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["kind", "detail", "severity"],
        "properties": {
          "kind": {"type": "string"},
          "detail": {"type": "string"},
          "severity": {"enum": ["high", "medium", "low"]}
        }
      }
    },
    "warnings": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["kind", "detail"],
        "properties": {
          "kind": {"type": "string"},
          "detail": {"type": "string"}
        }
      }
    }
  },
  "if": {"properties": {"escalated": {"const": true}}},
  "then": {"properties": {"escalation_model": {"type": "string"}}}
}`
