// pkg/rulespec/schema.go
package rulespec

// ruleSetSchema constrains authored rule-set documents before they are
// decoded. Expression nodes are validated structurally in Parse; the
// schema only pins down the envelope.
const ruleSetSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["programId", "version", "rules"],
  "properties": {
    "programId": {
      "type": "string",
      "pattern": "^[a-z][a-z0-9_-]*$"
    },
    "version": {
      "type": "string",
      "minLength": 1
    },
    "rules": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "programId", "expression"],
        "properties": {
          "id": {
            "type": "string",
            "pattern": "^[a-z][a-z0-9-]*$"
          },
          "programId": {
            "type": "string"
          },
          "type": {
            "type": "string",
            "enum": ["income", "asset", "age", "disability", "citizenship", "categorical", "composite"]
          },
          "name": {
            "type": "string"
          },
          "explanation": {
            "type": "string"
          },
          "expression": {
            "type": "object"
          },
          "active": {
            "type": "boolean"
          }
        }
      }
    }
  }
}`
