/*
go-roadwatch assists a vehicle operator by tracking nearby vehicles
across camera frames and estimating collision risk from their geometry
and motion.

The core is a multi-target tracker (per-vehicle Kalman state estimation
with greedy gated association), a collision risk scorer (distance,
bearing angle, time to collision, severity) and a cross-vehicle alert
aggregator.  Object detection, frame acquisition and overlay rendering
are collaborators provided by the source and render subpackages.

See example code and usage in the example subdirectory.
*/
package roadwatch
