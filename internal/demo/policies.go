package demo

import "github.com/wardops/wardops/internal/store"

// policyDocuments returns the operational policy library the copilot
// retrieval queries search over.
func policyDocuments() []store.PolicyDocument {
	docs := []struct {
		title    string
		category string
		content  string
	}{
		{
			title:    "Isolation Protocol",
			category: "protocol",
			content: `# Isolation Protocol

## Purpose
Guidelines for patient isolation to prevent the spread of infectious diseases.

## Room Assignment
- Isolation patients MUST be assigned to designated isolation rooms (Beds 1 and 24 in Medical Unit A).
- If no isolation room is available, the patient waits in the ED isolation area.
- Maximum wait time for an isolation room: 2 hours (SLA).

## PPE Requirements
- Contact: gown and gloves.
- Droplet: surgical mask, gown, gloves.
- Airborne: N95 respirator, gown, gloves, negative pressure room.

## Nurse Assignment
- Isolation patients should be cohorted to the same nurse when possible.
- Nurse-to-patient ratio for isolation: maximum 3:1.

## Compliance
Compliance audits are conducted monthly; breaches are reported through the incident reporting system.`,
		},
		{
			title:    "Nurse Staffing Ratio Guidelines",
			category: "guideline",
			content: `# Nurse Staffing Ratio Guidelines

## Staffing Ratios (Medical-Surgical)
- Day shift (7am-3pm): 1:4.
- Evening shift (3pm-11pm): 1:5.
- Night shift (11pm-7am): 1:6.

## Acuity-Based Adjustments
- If the unit acuity index exceeds 2.5, reduce ratios by one patient.
- If more than 20% of patients are high acuity, request additional staff.
- Average unit acuity above 3.5 escalates to the charge nurse; above 4.0 to the nursing supervisor.

## Shift Handoff
- Minimum 15 minutes of handoff per patient.
- All high-acuity patients require bedside handoff.

## Monitoring
A real-time dashboard tracks nurse-to-patient ratios with automatic alerts when ratios are exceeded.`,
		},
		{
			title:    "Transport Service Level Agreement",
			category: "sla",
			content: `# Transport Service Level Agreement

## Transport Categories
- STAT: life-threatening, response within 5 minutes (95% compliance target).
- Urgent: time-sensitive, response within 15 minutes (90% compliance target).
- Routine: scheduled transports, response within 30 minutes (85% compliance target).

## Transport Capacity
- Minimum 2 transport staff on duty per shift; 4 during peak hours (7am-7pm).

## Escalation
1. Transport not arrived within SLA: contact transport dispatch.
2. Still delayed after 10 minutes: escalate to the transport supervisor.
3. Patient condition changes during the wait: re-triage transport priority.

## Documentation
Request time, arrival time, and any delay reason codes must be documented.`,
		},
		{
			title:    "Imaging Priority and Scheduling Rules",
			category: "guideline",
			content: `# Imaging Priority and Scheduling Rules

## Priority Levels
- Priority 1 (STAT): within 30 minutes. Stroke symptoms, acute chest pain with ECG changes, unstable trauma, suspected PE.
- Priority 2 (Urgent): within 2 hours. New neurological deficits, concerning acute abdomen, suspected appendicitis.
- Priority 3 (Same day): within 8 hours. Pre-operative and discharge-planning imaging.
- Priority 4 (Routine): within 24 hours. Screening and chronic condition monitoring.

## Capacity
- CT: 2 scanners, one reserved for STAT. MRI: 1 scanner with 2 STAT slots per shift.
- X-ray: 3 rooms plus portable. Ultrasound: 2 rooms.

## Queue Rules
STAT imaging bumps all lower priorities. Escalate when waits exceed 15 minutes (P1), 1 hour (P2), 4 hours (P3), or 8 hours (P4).

## Targets
STAT completion within 30 minutes: 95%. Urgent completion within 2 hours: 90%.`,
		},
		{
			title:    "Bed Management and Patient Flow Protocol",
			category: "protocol",
			content: `# Bed Management and Patient Flow Protocol

## Bed Status Definitions
- Empty: clean and ready for immediate placement (target 10% of beds).
- Occupied: patient assigned, care in progress.
- Cleaning: awaiting environmental services, 30 minutes maximum.
- Isolation: reserved for isolation patients.

## Bed Assignment Priority
1. ED patients boarding over 4 hours.
2. ICU step-down patients.
3. Post-surgical patients.
4. Direct admissions.
5. Internal transfers.

## Discharge Process
- Discharge order to departure: target 2 hours.
- Bed cleaning notification within 5 minutes of departure; bed ready within 35 minutes.

## Capacity Alerts
- Yellow: occupancy over 85% - review and expedite all potential discharges.
- Orange: occupancy over 90% - activate surge protocols.
- Red: occupancy over 95% or ED boarding over 4 hours - full surge plan, consider diversion.`,
		},
	}

	out := make([]store.PolicyDocument, 0, len(docs))
	for i, d := range docs {
		out = append(out, store.PolicyDocument{
			ID:        demoID("policy", i+1),
			Title:     d.title,
			Category:  d.category,
			Content:   d.content,
			CreatedAt: Anchor,
		})
	}
	return out
}
