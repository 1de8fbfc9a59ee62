// Package model defines the core data structures used throughout linksleuth.
//
// This package contains the following main types:
//   - SourceResult: The verdict returned by one threat-intelligence source
//   - InfraDescriptor: The network/hosting posture of a hostname
//   - LinkAnalysis: Structural and content red flags for a URL
//   - EvidenceBundle: Everything gathered about a URL in one assessment pass
//   - RiskAssessment: The scored, explainable result cached and shown to callers
package model
