package demo

var firstNames = []string{
	"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael", "Linda",
	"William", "Elizabeth", "David", "Barbara", "Richard", "Susan", "Joseph", "Jessica",
	"Thomas", "Sarah", "Charles", "Karen", "Christopher", "Nancy", "Daniel", "Lisa",
	"Matthew", "Betty", "Anthony", "Margaret", "Mark", "Sandra", "Donald", "Ashley",
	"Steven", "Kimberly", "Paul", "Emily", "Andrew", "Donna", "Joshua", "Michelle",
	"Kenneth", "Dorothy", "Kevin", "Carol", "Brian", "Amanda", "George", "Melissa",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson",
	"Thomas", "Taylor", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson",
	"White", "Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson", "Walker",
	"Young", "Allen", "King", "Wright", "Scott", "Torres", "Nguyen", "Hill", "Flores",
}

var chiefComplaints = []string{
	"Chest pain", "Shortness of breath", "Abdominal pain", "Headache",
	"Back pain", "Fever", "Nausea and vomiting", "Dizziness",
	"Weakness", "Cough", "Fall", "Altered mental status",
	"Leg pain", "Arm pain", "Syncope", "Seizure",
	"Urinary symptoms", "Rash", "Eye pain", "Ear pain",
}

var nurseNames = []string{
	"Sarah Chen", "Michael Rodriguez", "Emily Johnson", "David Kim",
	"Jessica Williams", "Robert Garcia", "Amanda Martinez", "James Wilson",
	"Nicole Brown", "Christopher Lee", "Stephanie Davis", "Matthew Anderson",
	"Rachel Thomas", "Daniel Taylor", "Lauren Moore", "Kevin Jackson",
	"Ashley Martin", "Brian White", "Megan Harris", "Justin Clark",
}

var imagingTypes = []string{"X-ray", "CT", "MRI", "Ultrasound"}

var consultSpecialties = []string{"Cardiology", "Neurology", "Surgery", "Pulmonology"}

var escalationReasons = []string{
	"Vitals deterioration",
	"Pain increase",
	"Respiratory distress",
	"Mental status change",
}

var dispositions = []string{"Home", "Home with services", "Rehab", "SNF"}
