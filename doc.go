/*
go-actiondetect post processes the output of a volleyball action detection
Model (spike, block, receive, set, serve, ball) into label keyed detection
groups and renders them onto video frames.

The Model itself runs out of process and is reached through the Detector
interface.  The root package holds the label registry, configuration and
frame batching, with the aggregation of raw Model output in the postprocess
subpackage and drawing in the render subpackage.

See example code and usage in the examples subdirectory.
*/
package actiondetect
