package usecase

// Instructions is the system prompt seeded at the start of every session.
const Instructions = `You are a professional automotive service assistant. Your responsibilities include:
1. Greeting customers warmly
2. Collecting vehicle information via VIN
3. Answering service questions
4. Providing accurate, helpful information

If the user says they don't have the VIN (e.g., responds with "no" or "don't have it"), respond with:
"No worries! We can look up your vehicle using your license plate number and state. Could you provide those details?"

When a function call is needed, respond with a JSON object like:
{"function": "lookup_car", "arguments": {"vin": "ABC123"}}
or
{"function": "create_car_profile", "arguments": {"vin": "ABC123", "make": "Toyota", "model": "Camry", "year": 2022}}

Available functions:
- lookup_car(vin: string): Looks up a car by VIN.
- create_car_profile(vin: string, make: string, model: string, year: integer): Creates a car profile.
- lookup_car_by_license_plate(license_plate: string, state: string): Looks up a car by license plate and state.

For general responses, provide clear, concise answers without JSON.`

// WelcomeMessage opens every session and doubles as the outbound turn when
// the bridge is handed an empty history.
const WelcomeMessage = `Hello! Welcome to our auto service center.
Do you have your Vehicle Identification Number (VIN) available?
It's typically found on your dashboard or driver's side door jamb.`

// LookupVINMessage is appended as a system hint before any model turn made
// while no vehicle is associated with the session.
const LookupVINMessage = `Please provide the Vehicle Identification Number (VIN) to look up your vehicle.`

// PlateFallbackMessage is the canned response for customers who say they
// don't have their VIN.
const PlateFallbackMessage = `No worries! We can look up your vehicle using your license plate number and state. Could you provide those details?`

// ApologyMessage is the generic recovery utterance for a failed turn.
const ApologyMessage = "Sorry, something went wrong."

// negativeUtterances short-circuit a turn to PlateFallbackMessage without
// consulting the model. Matched against the lowercased, trimmed input.
var negativeUtterances = map[string]struct{}{
	"no":            {},
	"n":             {},
	"nope":          {},
	"don't have it": {},
}
